// Package testutil provides shared test fixtures for the districting
// packages that sit above the core: renderers, the run store and the
// command-line drivers.
package testutil

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/banshee-data/districting/internal/districting"
)

// FourPoints is the four-point line instance whose greedy k=2 solution is
// {1,4} (load 11) and {2,3} (load 10), with sumAllToCenter=2,
// sumAllToAll=4 and loadRange=1 under LineTable.
func FourPoints() *districting.Instance {
	return &districting.Instance{
		Name: "four-points",
		Points: []districting.DemandPoint{
			{ID: 1, Lat: 0, Long: 0, Demand: 10},
			{ID: 2, Lat: 0, Long: 10, Demand: 5},
			{ID: 3, Lat: 0, Long: 9, Demand: 5},
			{ID: 4, Lat: 0, Long: 1, Demand: 1},
		},
	}
}

// LineTable returns |Δlong| + |Δlat| for every ordered pair of points.
func LineTable(points []districting.DemandPoint) districting.MapTable {
	table := make(districting.MapTable, len(points)*len(points))
	for _, a := range points {
		for _, b := range points {
			table[districting.Pair{From: a.ID, To: b.ID}] = math.Abs(a.Long-b.Long) + math.Abs(a.Lat-b.Lat)
		}
	}
	return table
}

// MustBuild runs the greedy engine over points with LineTable and fails the
// test on error.
func MustBuild(t *testing.T, k int, points []districting.DemandPoint) *districting.Solution {
	t.Helper()
	sol, err := districting.NewEngine().Build(k, points, LineTable(points))
	if err != nil {
		t.Fatalf("build k=%d: %v", k, err)
	}
	return sol
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TempDBPath returns a fresh sqlite path inside t.TempDir().
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "districting.db")
}
