package districting

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/banshee-data/districting/internal/monitoring"
)

// Strategy selects how the engine picks centers and assigns points.
type Strategy int

const (
	// StrategyDemandGreedy takes the k highest-demand points as centers and
	// assigns the rest by round-robin nearest-center picks. Deterministic.
	StrategyDemandGreedy Strategy = iota
	// StrategyRandomRoundRobin shuffles the points, takes the first k as
	// centers and deals the rest out to clusters in turn.
	StrategyRandomRoundRobin
)

var strategyNames = map[Strategy]string{
	StrategyDemandGreedy:     "demand-greedy",
	StrategyRandomRoundRobin: "random-round-robin",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// MarshalText encodes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, fmt.Errorf("%d: %w", int(s), ErrInvalidStrategy)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a name accepted by ParseStrategy.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidStrategy)
}

// Engine builds solutions. The zero value is not usable; call NewEngine.
type Engine struct {
	strategy Strategy
	rng      *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy sets the construction strategy.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// WithRand sets the generator used by randomized strategies. When unset, a
// generator seeded with DefaultSeed is created per build.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// NewEngine returns an engine using StrategyDemandGreedy unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{strategy: StrategyDemandGreedy}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy returns the configured strategy.
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Build partitions points into exactly k clusters and derives their measures.
// points is not modified. The table is only read.
func (e *Engine) Build(k int, points []DemandPoint, table DistanceTable) (*Solution, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no demand points: %w", ErrInvalidInstance)
	}
	if k <= 0 || k > len(points) {
		return nil, fmt.Errorf("k=%d with %d points: %w", k, len(points), ErrInvalidParameter)
	}
	if table == nil {
		return nil, fmt.Errorf("nil distance table: %w", ErrMissingDistance)
	}

	var (
		clusters []*Cluster
		err      error
	)
	switch e.strategy {
	case StrategyDemandGreedy:
		clusters, err = buildDemandGreedy(k, points, table)
	case StrategyRandomRoundRobin:
		rng := e.rng
		if rng == nil {
			rng = NewRand(DefaultSeed)
		}
		clusters = buildRandomRoundRobin(k, points, rng)
	default:
		return nil, fmt.Errorf("%v: %w", e.strategy, ErrInvalidStrategy)
	}
	if err != nil {
		return nil, err
	}

	for i, c := range clusters {
		if err := c.ComputeMeasures(table); err != nil {
			return nil, fmt.Errorf("cluster %d measures: %w", i, err)
		}
		monitoring.Debugf("districting: cluster %d center=%d size=%d load=%g", i, c.Center.ID, c.Size(), c.Load)
	}

	monitoring.Debugf("districting: built %d clusters over %d points (strategy=%s)", k, len(points), e.strategy)
	return &Solution{Clusters: clusters, Strategy: e.strategy}, nil
}

// buildDemandGreedy selects the k highest-demand points as centers, then
// hands out remaining points one per cluster per pass, each cluster taking
// the pool point nearest its center.
func buildDemandGreedy(k int, points []DemandPoint, table DistanceTable) ([]*Cluster, error) {
	pool := newPool(len(points))

	clusters := make([]*Cluster, 0, k)
	for i := 0; i < k; i++ {
		var idx int
		idx, pool = takeMaxDemand(points, pool)
		clusters = append(clusters, NewCluster(points[idx]))
	}

	for len(pool) > 0 {
		for _, c := range clusters {
			if len(pool) == 0 {
				break
			}
			var (
				idx int
				err error
			)
			idx, pool, err = takeNearest(c.Center, points, pool, table)
			if err != nil {
				return nil, err
			}
			c.Members = append(c.Members, points[idx])
		}
	}
	return clusters, nil
}

// buildRandomRoundRobin shuffles an owned copy of the point order, takes the
// first k as centers and deals the rest out by position modulo k.
func buildRandomRoundRobin(k int, points []DemandPoint, rng *rand.Rand) []*Cluster {
	order := newPool(len(points))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	clusters := make([]*Cluster, 0, k)
	for _, idx := range order[:k] {
		clusters = append(clusters, NewCluster(points[idx]))
	}
	for i, idx := range order[k:] {
		c := clusters[i%k]
		c.Members = append(c.Members, points[idx])
	}
	return clusters
}

// newPool returns the indexes 0..n-1 in scan order.
func newPool(n int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	return pool
}

// takeMaxDemand removes and returns the pool entry with the largest demand.
// Ties go to the earliest entry.
func takeMaxDemand(points []DemandPoint, pool []int) (int, []int) {
	best := 0
	for i := 1; i < len(pool); i++ {
		if points[pool[i]].Demand > points[pool[best]].Demand {
			best = i
		}
	}
	idx := pool[best]
	return idx, removeAt(pool, best)
}

// takeNearest removes and returns the pool entry closest to center. Ties go
// to the earliest entry. Every pool entry is looked up, so a missing pair
// fails even if a nearer point exists.
func takeNearest(center DemandPoint, points []DemandPoint, pool []int, table DistanceTable) (int, []int, error) {
	best := -1
	bestDist := 0.0
	for i, idx := range pool {
		d, err := lookup(table, center.ID, points[idx].ID)
		if err != nil {
			return 0, pool, err
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	idx := pool[best]
	return idx, removeAt(pool, best), nil
}

// removeAt deletes pool[i] keeping the remaining order.
func removeAt(pool []int, i int) []int {
	return append(pool[:i], pool[i+1:]...)
}
