package districting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DemandPoint is a located demand. Values are copied, never shared by pointer,
// so a loaded point cannot change underneath a cluster.
type DemandPoint struct {
	ID     int     `json:"id"`
	Lat    float64 `json:"lat"`
	Long   float64 `json:"long"`
	Demand float64 `json:"demand"`
}

// Instance is a named collection of demand points as produced by a loader.
type Instance struct {
	Name   string        `json:"name"`
	Points []DemandPoint `json:"points"`
}

// Len returns the number of demand points.
func (in *Instance) Len() int {
	if in == nil {
		return 0
	}
	return len(in.Points)
}

// TotalDemand returns the sum of all point demands.
func (in *Instance) TotalDemand() float64 {
	if in == nil || len(in.Points) == 0 {
		return 0
	}
	return floats.Sum(demands(in.Points))
}

// IDs returns point ids in instance order.
func (in *Instance) IDs() []int {
	if in == nil {
		return nil
	}
	ids := make([]int, len(in.Points))
	for i, p := range in.Points {
		ids[i] = p.ID
	}
	return ids
}

// Validate checks the instance is non-empty, its ids are unique and every
// demand is finite and non-negative.
func (in *Instance) Validate() error {
	if in.Len() == 0 {
		return fmt.Errorf("no demand points: %w", ErrInvalidInstance)
	}
	seen := make(map[int]struct{}, len(in.Points))
	for _, p := range in.Points {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate point id %d: %w", p.ID, ErrInvalidInstance)
		}
		if math.IsNaN(p.Demand) || math.IsInf(p.Demand, 0) {
			return fmt.Errorf("point %d has non-finite demand %v: %w", p.ID, p.Demand, ErrInvalidInstance)
		}
		if p.Demand < 0 {
			return fmt.Errorf("point %d has negative demand %v: %w", p.ID, p.Demand, ErrInvalidInstance)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func demands(points []DemandPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Demand
	}
	return out
}
