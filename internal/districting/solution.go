package districting

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Solution is the set of clusters produced by one engine run. It is treated
// as read-only once Build returns.
type Solution struct {
	Clusters []*Cluster `json:"clusters"`
	Strategy Strategy   `json:"strategy"`
}

// NewSolution wraps already-measured clusters, for callers that assemble a
// partition themselves.
func NewSolution(clusters ...*Cluster) *Solution {
	return &Solution{Clusters: clusters}
}

// Evaluate computes obj over the current clusters. Values are recomputed on
// every call.
func (s *Solution) Evaluate(obj Objective) (float64, error) {
	if _, ok := objectiveCatalogue[obj]; !ok {
		return 0, fmt.Errorf("%v: %w", obj, ErrInvalidObjective)
	}
	if s == nil || len(s.Clusters) == 0 {
		return 0, ErrEmptySolution
	}

	switch obj {
	case SumAllToCenter:
		sum := 0.0
		for _, c := range s.Clusters {
			sum += c.SumCenterDistances()
		}
		return sum, nil

	case SumAllToAll:
		sum := 0.0
		for _, c := range s.Clusters {
			sum += c.SumAllPairDistances()
		}
		return sum, nil

	case LoadRange:
		loads := s.Loads()
		return floats.Max(loads) - floats.Min(loads), nil
	}

	return 0, fmt.Errorf("%v: %w", obj, ErrInvalidObjective)
}

// EvaluateName parses name and evaluates it.
func (s *Solution) EvaluateName(name string) (float64, error) {
	obj, err := ParseObjective(name)
	if err != nil {
		return 0, err
	}
	return s.Evaluate(obj)
}

// ObjectiveValue pairs an objective with its value.
type ObjectiveValue struct {
	Objective Objective `json:"objective"`
	Value     float64   `json:"value"`
}

// EvaluateAll evaluates every objective in declaration order.
func (s *Solution) EvaluateAll() ([]ObjectiveValue, error) {
	out := make([]ObjectiveValue, 0, len(objectiveCatalogue))
	for _, obj := range AllObjectives() {
		v, err := s.Evaluate(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, ObjectiveValue{Objective: obj, Value: v})
	}
	return out, nil
}

// Loads returns the load of each cluster in cluster order.
func (s *Solution) Loads() []float64 {
	loads := make([]float64, len(s.Clusters))
	for i, c := range s.Clusters {
		loads[i] = c.Load
	}
	return loads
}

// PointCount returns the number of assigned points across all clusters.
func (s *Solution) PointCount() int {
	n := 0
	for _, c := range s.Clusters {
		n += c.Size()
	}
	return n
}

// Assignment maps each point id to the index of its cluster.
func (s *Solution) Assignment() map[int]int {
	out := make(map[int]int, s.PointCount())
	for i, c := range s.Clusters {
		for _, m := range c.Members {
			out[m.ID] = i
		}
	}
	return out
}
