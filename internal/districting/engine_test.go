package districting

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_FourPointScenario(t *testing.T) {
	points := linePoints([]float64{0, 10, 9, 1}, []float64{10, 5, 5, 1})
	table := lineTable(points)

	sol, err := NewEngine().Build(2, points, table)
	require.NoError(t, err)
	require.Len(t, sol.Clusters, 2)

	// Centers are the demand-10 point and the first demand-5 point.
	assert.Equal(t, 1, sol.Clusters[0].Center.ID)
	assert.Equal(t, 2, sol.Clusters[1].Center.ID)

	want := [][]int{{1, 4}, {2, 3}}
	if diff := cmp.Diff(want, memberIDs(sol)); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []float64{0, 1}, sol.Clusters[0].CenterDistances)
	assert.Equal(t, []float64{0, 1, 1, 0}, sol.Clusters[0].AllPairDistances)
	assert.Equal(t, 11.0, sol.Clusters[0].Load)
	assert.Equal(t, 10.0, sol.Clusters[1].Load)
	assert.Equal(t, StrategyDemandGreedy, sol.Strategy)
}

func TestBuild_CenterSelectionTakesTopDemand(t *testing.T) {
	demands := []float64{3, 7, 1, 7, 9, 2, 9}
	longs := []float64{0, 1, 2, 3, 4, 5, 6}
	points := linePoints(longs, demands)

	sol, err := NewEngine().Build(4, points, lineTable(points))
	require.NoError(t, err)

	centers := make([]int, len(sol.Clusters))
	for i, c := range sol.Clusters {
		centers[i] = c.Center.ID
		assert.Equal(t, c.Center, c.Members[0], "center must be first member")
	}
	// 9s in scan order, then 7s in scan order.
	assert.Equal(t, []int{5, 7, 2, 4}, centers)
}

func TestBuild_AllZeroDemandPicksScanOrder(t *testing.T) {
	points := linePoints([]float64{0, 1, 2}, []float64{0, 0, 0})

	sol, err := NewEngine().Build(2, points, lineTable(points))
	require.NoError(t, err)
	assert.Equal(t, 1, sol.Clusters[0].Center.ID)
	assert.Equal(t, 2, sol.Clusters[1].Center.ID)
}

func TestBuild_NearestTieGoesToEarliest(t *testing.T) {
	// Center at 0; pool holds -1 (id 2) and +1 (id 3), both at distance 1.
	points := linePoints([]float64{0, -1, 1}, []float64{5, 1, 1})

	sol, err := NewEngine().Build(1, points, lineTable(points))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, sol.Clusters[0].MemberIDs())
}

func TestBuild_RoundRobinPasses(t *testing.T) {
	// Two centers far apart; every remaining point is nearer center A, but
	// the clusters still alternate picks.
	points := linePoints(
		[]float64{0, 100, 1, 2, 3, 4},
		[]float64{9, 8, 1, 1, 1, 1},
	)

	sol, err := NewEngine().Build(2, points, lineTable(points))
	require.NoError(t, err)

	want := [][]int{{1, 3, 4}, {2, 6, 5}}
	if diff := cmp.Diff(want, memberIDs(sol)); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_KEqualsN(t *testing.T) {
	points := linePoints([]float64{0, 3, 7}, []float64{4, 9, 1})

	sol, err := NewEngine().Build(3, points, lineTable(points))
	require.NoError(t, err)
	require.Len(t, sol.Clusters, 3)
	for _, c := range sol.Clusters {
		assert.Equal(t, 1, c.Size())
	}

	v, err := sol.Evaluate(SumAllToAll)
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = sol.Evaluate(SumAllToCenter)
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = sol.Evaluate(LoadRange)
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)
}

func TestBuild_InvalidK(t *testing.T) {
	points := linePoints([]float64{0, 1}, []float64{1, 1})
	table := lineTable(points)

	for _, k := range []int{0, -1, 3} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			sol, err := NewEngine().Build(k, points, table)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.Nil(t, sol)
		})
	}
}

func TestBuild_EmptyInstance(t *testing.T) {
	sol, err := NewEngine().Build(1, nil, MapTable{})
	assert.ErrorIs(t, err, ErrInvalidInstance)
	assert.Nil(t, sol)
}

func TestBuild_NilTable(t *testing.T) {
	points := linePoints([]float64{0}, []float64{1})
	_, err := NewEngine().Build(1, points, nil)
	assert.ErrorIs(t, err, ErrMissingDistance)
}

func TestBuild_MissingDistance(t *testing.T) {
	points := linePoints([]float64{0, 5, 6}, []float64{3, 2, 1})

	t.Run("during assignment", func(t *testing.T) {
		table := lineTable(points)
		delete(table, Pair{From: 1, To: 3})

		sol, err := NewEngine().Build(1, points, table)
		assert.ErrorIs(t, err, ErrMissingDistance)
		assert.Nil(t, sol)
	})

	t.Run("during measures", func(t *testing.T) {
		table := lineTable(points)
		delete(table, Pair{From: 3, To: 2})

		sol, err := NewEngine().Build(1, points, table)
		assert.ErrorIs(t, err, ErrMissingDistance)
		assert.Nil(t, sol)
	})
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	points := linePoints([]float64{4, 1, 8, 2, 6}, []float64{1, 5, 2, 4, 3})
	before := append([]DemandPoint(nil), points...)

	_, err := NewEngine().Build(2, points, lineTable(points))
	require.NoError(t, err)

	if diff := cmp.Diff(before, points); diff != "" {
		t.Errorf("input points changed (-before +after):\n%s", diff)
	}
}

func TestBuild_PartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 40
	longs := make([]float64, n)
	demands := make([]float64, n)
	for i := 0; i < n; i++ {
		longs[i] = rng.Float64() * 100
		demands[i] = float64(rng.Intn(20))
	}
	points := linePoints(longs, demands)
	table := lineTable(points)

	for _, strategy := range []Strategy{StrategyDemandGreedy, StrategyRandomRoundRobin} {
		for _, k := range []int{1, 3, 7, n} {
			t.Run(fmt.Sprintf("%s/k=%d", strategy, k), func(t *testing.T) {
				eng := NewEngine(WithStrategy(strategy), WithRand(NewRand(11)))
				sol, err := eng.Build(k, points, table)
				require.NoError(t, err)
				require.Len(t, sol.Clusters, k)

				seen := make(map[int]int)
				for _, c := range sol.Clusters {
					assert.Equal(t, c.Center, c.Members[0])
					assert.Len(t, c.CenterDistances, c.Size())
					assert.Len(t, c.AllPairDistances, c.Size()*c.Size())
					for _, m := range c.Members {
						seen[m.ID]++
					}
				}
				require.Len(t, seen, n)
				for id, count := range seen {
					assert.Equal(t, 1, count, "point %d assigned %d times", id, count)
				}
				assert.Equal(t, n, sol.PointCount())
			})
		}
	}
}

func TestBuild_RandomStrategyReproducible(t *testing.T) {
	points := linePoints(
		[]float64{0, 1, 2, 3, 4, 5, 6, 7},
		[]float64{1, 2, 3, 4, 5, 6, 7, 8},
	)
	table := lineTable(points)

	build := func(seed int64) *Solution {
		eng := NewEngine(WithStrategy(StrategyRandomRoundRobin), WithRand(NewRand(seed)))
		sol, err := eng.Build(3, points, table)
		require.NoError(t, err)
		return sol
	}

	a, b := build(22), build(22)
	if diff := cmp.Diff(memberIDs(a), memberIDs(b)); diff != "" {
		t.Errorf("same seed produced different partitions (-a +b):\n%s", diff)
	}
	assert.Equal(t, StrategyRandomRoundRobin, a.Strategy)

	// Dealt round robin: sizes differ by at most one.
	for _, c := range a.Clusters {
		assert.InDelta(t, float64(len(points))/3, float64(c.Size()), 1.0)
	}
}

func TestBuild_RandomStrategyDefaultsToSeededRand(t *testing.T) {
	points := linePoints([]float64{0, 1, 2, 3}, []float64{1, 1, 1, 1})
	table := lineTable(points)

	a, err := NewEngine(WithStrategy(StrategyRandomRoundRobin)).Build(2, points, table)
	require.NoError(t, err)
	b, err := NewEngine(WithStrategy(StrategyRandomRoundRobin), WithRand(NewRand(DefaultSeed))).Build(2, points, table)
	require.NoError(t, err)
	assert.Equal(t, memberIDs(b), memberIDs(a))
}

func TestBuild_UnknownStrategy(t *testing.T) {
	points := linePoints([]float64{0}, []float64{1})
	_, err := NewEngine(WithStrategy(Strategy(42))).Build(1, points, lineTable(points))
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name    string
		want    Strategy
		wantErr bool
	}{
		{"demand-greedy", StrategyDemandGreedy, false},
		{" Random-Round-Robin ", StrategyRandomRoundRobin, false},
		{"kmeans", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStrategy(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var s Strategy
			require.NoError(t, s.UnmarshalText([]byte(tt.name)))
			assert.Equal(t, tt.want, s)
		})
	}
}
