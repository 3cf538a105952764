package districting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourPointSolution(t *testing.T) *Solution {
	t.Helper()
	points := linePoints([]float64{0, 10, 9, 1}, []float64{10, 5, 5, 1})
	sol, err := NewEngine().Build(2, points, lineTable(points))
	require.NoError(t, err)
	return sol
}

func TestEvaluate_Objectives(t *testing.T) {
	sol := fourPointSolution(t)

	tests := []struct {
		name string
		obj  Objective
		want float64
	}{
		{"sum to center", SumAllToCenter, 2},
		{"sum all pairs counts both directions", SumAllToAll, 4},
		{"load range", LoadRange, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sol.Evaluate(tt.obj)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)

			byName, err := sol.EvaluateName(tt.obj.String())
			require.NoError(t, err)
			assert.Equal(t, got, byName)
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	sol := fourPointSolution(t)
	for _, obj := range AllObjectives() {
		first, err := sol.Evaluate(obj)
		require.NoError(t, err)
		second, err := sol.Evaluate(obj)
		require.NoError(t, err)
		assert.Equal(t, first, second, obj.String())
	}
}

func TestEvaluate_UnknownObjective(t *testing.T) {
	sol := fourPointSolution(t)

	_, err := sol.EvaluateName("sumOfSquares")
	assert.ErrorIs(t, err, ErrInvalidObjective)

	_, err = sol.Evaluate(Objective(0))
	assert.ErrorIs(t, err, ErrInvalidObjective)
}

func TestEvaluate_EmptySolution(t *testing.T) {
	for _, obj := range AllObjectives() {
		_, err := NewSolution().Evaluate(obj)
		assert.ErrorIs(t, err, ErrEmptySolution, obj.String())
	}

	var nilSol *Solution
	_, err := nilSol.Evaluate(LoadRange)
	assert.ErrorIs(t, err, ErrEmptySolution)
}

func TestEvaluate_LoadRangeZeroWhenBalanced(t *testing.T) {
	points := linePoints([]float64{0, 1, 5, 6}, []float64{2, 2, 1, 1})
	table := lineTable(points)

	a := NewCluster(points[0])
	a.Members = append(a.Members, points[2])
	b := NewCluster(points[1])
	b.Members = append(b.Members, points[3])
	require.NoError(t, a.ComputeMeasures(table))
	require.NoError(t, b.ComputeMeasures(table))

	v, err := NewSolution(a, b).Evaluate(LoadRange)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestEvaluate_NonNegative(t *testing.T) {
	points := linePoints(
		[]float64{3, 9, 1, 4, 7, 2, 8},
		[]float64{5, 3, 8, 1, 2, 2, 6},
	)
	sol, err := NewEngine().Build(3, points, lineTable(points))
	require.NoError(t, err)

	values, err := sol.EvaluateAll()
	require.NoError(t, err)
	require.Len(t, values, 3)
	for _, ov := range values {
		assert.GreaterOrEqual(t, ov.Value, 0.0, ov.Objective.String())
	}
}

func TestEvaluate_ZeroDistancesGiveZeroSums(t *testing.T) {
	points := linePoints([]float64{4, 4, 4}, []float64{1, 2, 3})
	sol, err := NewEngine().Build(2, points, lineTable(points))
	require.NoError(t, err)

	v, err := sol.Evaluate(SumAllToCenter)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestSolution_Assignment(t *testing.T) {
	sol := fourPointSolution(t)
	assert.Equal(t, map[int]int{1: 0, 4: 0, 2: 1, 3: 1}, sol.Assignment())
	assert.Equal(t, []float64{11, 10}, sol.Loads())
}

func TestParseObjective(t *testing.T) {
	for _, obj := range AllObjectives() {
		got, err := ParseObjective(" " + obj.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, obj, got)
	}

	got, err := ParseObjective("LOADRANGE")
	require.NoError(t, err)
	assert.Equal(t, LoadRange, got)
}

func TestObjectivesCatalogueSorted(t *testing.T) {
	infos := Objectives()
	require.Len(t, infos, 3)
	assert.Equal(t, "loadRange", infos[0].Name)
	assert.Equal(t, "sumAllToAll", infos[1].Name)
	assert.Equal(t, "sumAllToCenter", infos[2].Name)
	for _, info := range infos {
		assert.NotEmpty(t, info.Description)
	}
}

func TestObjectiveMarshalText(t *testing.T) {
	b, err := SumAllToAll.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "sumAllToAll", string(b))

	_, err = Objective(99).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidObjective)

	var o Objective
	require.NoError(t, o.UnmarshalText([]byte("loadRange")))
	assert.Equal(t, LoadRange, o)
	assert.ErrorIs(t, o.UnmarshalText([]byte("nope")), ErrInvalidObjective)
}

func TestObjectiveValueJSON(t *testing.T) {
	in := []ObjectiveValue{{Objective: SumAllToAll, Value: 4}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"objective":"sumAllToAll","value":4}]`, string(data))

	var out []ObjectiveValue
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
