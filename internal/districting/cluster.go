package districting

import (
	"gonum.org/v1/gonum/floats"
)

// Cluster is a center plus the points assigned to it. Members[0] is always the
// center. The measure fields are summary statistics filled by ComputeMeasures
// once membership is final; they are not kept in sync with later edits.
type Cluster struct {
	Center  DemandPoint   `json:"center"`
	Members []DemandPoint `json:"members"`

	// CenterDistances[i] is the distance from Center to Members[i].
	CenterDistances []float64 `json:"center_distances"`
	// AllPairDistances holds d(Members[i], Members[j]) for i outer, j inner.
	AllPairDistances []float64 `json:"all_pair_distances"`
	// Load is the sum of member demands.
	Load float64 `json:"load"`
}

// NewCluster creates a cluster whose only member is its center.
func NewCluster(center DemandPoint) *Cluster {
	return &Cluster{
		Center:  center,
		Members: []DemandPoint{center},
	}
}

// Size returns the number of members, center included.
func (c *Cluster) Size() int {
	return len(c.Members)
}

// MemberIDs returns member ids in assignment order.
func (c *Cluster) MemberIDs() []int {
	ids := make([]int, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// ComputeMeasures derives center distances, all-pair distances and load from
// the current membership. On a missing distance the cluster is left unchanged.
func (c *Cluster) ComputeMeasures(table DistanceTable) error {
	n := len(c.Members)

	centerDists := make([]float64, n)
	for i, m := range c.Members {
		d, err := lookup(table, c.Center.ID, m.ID)
		if err != nil {
			return err
		}
		centerDists[i] = d
	}

	allPairs := make([]float64, 0, n*n)
	for _, a := range c.Members {
		for _, b := range c.Members {
			d, err := lookup(table, a.ID, b.ID)
			if err != nil {
				return err
			}
			allPairs = append(allPairs, d)
		}
	}

	c.CenterDistances = centerDists
	c.AllPairDistances = allPairs
	c.Load = floats.Sum(demands(c.Members))
	return nil
}

// SumCenterDistances returns the sum of CenterDistances.
func (c *Cluster) SumCenterDistances() float64 {
	return floats.Sum(c.CenterDistances)
}

// SumAllPairDistances returns the sum of AllPairDistances. Every unordered
// pair is counted in both directions.
func (c *Cluster) SumAllPairDistances() float64 {
	return floats.Sum(c.AllPairDistances)
}
