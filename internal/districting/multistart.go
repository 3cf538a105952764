package districting

import (
	"fmt"
	"sort"
)

// ScoredSolution pairs a solution with its score under one objective.
type ScoredSolution struct {
	Solution *Solution `json:"solution"`
	// Start is 0 for the deterministic build and i for randomized start i.
	Start int `json:"start"`
	// Seed is the derived seed of a randomized start; zero for start 0.
	Seed  int64   `json:"seed"`
	Score float64 `json:"score"`
}

// RankSolutions scores solutions under obj and sorts them best (lowest) first.
// Equal scores keep their input order.
func RankSolutions(solutions []*Solution, obj Objective) ([]ScoredSolution, error) {
	scored := make([]ScoredSolution, len(solutions))
	for i, s := range solutions {
		v, err := s.Evaluate(obj)
		if err != nil {
			return nil, fmt.Errorf("solution %d: %w", i, err)
		}
		scored[i] = ScoredSolution{Solution: s, Start: i, Score: v}
	}
	sortScored(scored)
	return scored, nil
}

// MultiStartConfig configures RunMultiStart.
type MultiStartConfig struct {
	K         int
	Starts    int   // number of randomized starts in addition to the deterministic build
	Seed      int64 // parent seed; start i uses DeriveSeed(Seed, i)
	Objective Objective
}

// RunMultiStart builds the deterministic solution plus cfg.Starts randomized
// ones and returns all of them ranked by cfg.Objective.
func RunMultiStart(cfg MultiStartConfig, points []DemandPoint, table DistanceTable) ([]ScoredSolution, error) {
	if cfg.Starts < 0 {
		return nil, fmt.Errorf("starts=%d: %w", cfg.Starts, ErrInvalidParameter)
	}
	if _, ok := objectiveCatalogue[cfg.Objective]; !ok {
		return nil, fmt.Errorf("%v: %w", cfg.Objective, ErrInvalidObjective)
	}

	scored := make([]ScoredSolution, 0, cfg.Starts+1)

	base, err := NewEngine().Build(cfg.K, points, table)
	if err != nil {
		return nil, err
	}
	v, err := base.Evaluate(cfg.Objective)
	if err != nil {
		return nil, err
	}
	scored = append(scored, ScoredSolution{Solution: base, Score: v})

	for i := 1; i <= cfg.Starts; i++ {
		seed := DeriveSeed(cfg.Seed, uint64(i))
		eng := NewEngine(WithStrategy(StrategyRandomRoundRobin), WithRand(NewRand(seed)))
		sol, err := eng.Build(cfg.K, points, table)
		if err != nil {
			return nil, fmt.Errorf("start %d: %w", i, err)
		}
		v, err := sol.Evaluate(cfg.Objective)
		if err != nil {
			return nil, fmt.Errorf("start %d: %w", i, err)
		}
		scored = append(scored, ScoredSolution{Solution: sol, Start: i, Seed: seed, Score: v})
	}

	sortScored(scored)
	return scored, nil
}

func sortScored(scored []ScoredSolution) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})
}
