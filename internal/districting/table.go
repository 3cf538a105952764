package districting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DistanceTable is a read-only lookup of the distance from one point id to
// another. It need not be symmetric. The second return value reports whether
// the pair is present; callers must not substitute a default when it is not.
type DistanceTable interface {
	Distance(from, to int) (float64, bool)
}

// Pair is an ordered (from, to) pair of point ids.
type Pair struct {
	From int
	To   int
}

// MapTable is a DistanceTable backed by a map. It is convenient for sparse or
// hand-written tables in tests and small tools.
type MapTable map[Pair]float64

// Distance implements DistanceTable.
func (t MapTable) Distance(from, to int) (float64, bool) {
	d, ok := t[Pair{From: from, To: to}]
	return d, ok
}

// DenseTable is a DistanceTable over a fixed id set stored as an n×n matrix.
// Entries that were never set are reported as missing.
type DenseTable struct {
	ids   []int
	index map[int]int
	m     *mat.Dense
}

// NewDenseTable allocates a table for ids with every entry unset.
func NewDenseTable(ids []int) (*DenseTable, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("dense table needs at least one id: %w", ErrInvalidInstance)
	}
	index := make(map[int]int, len(ids))
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("duplicate point id %d: %w", id, ErrInvalidInstance)
		}
		index[id] = i
	}

	n := len(ids)
	data := make([]float64, n*n)
	for i := range data {
		data[i] = math.NaN()
	}

	owned := make([]int, n)
	copy(owned, ids)
	return &DenseTable{ids: owned, index: index, m: mat.NewDense(n, n, data)}, nil
}

// Set stores the distance from one id to another. Distances must be finite
// and non-negative.
func (t *DenseTable) Set(from, to int, d float64) error {
	i, ok := t.index[from]
	if !ok {
		return fmt.Errorf("unknown point id %d: %w", from, ErrMissingDistance)
	}
	j, ok := t.index[to]
	if !ok {
		return fmt.Errorf("unknown point id %d: %w", to, ErrMissingDistance)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("distance (%d, %d) = %v: %w", from, to, d, ErrInvalidParameter)
	}
	t.m.Set(i, j, d)
	return nil
}

// Distance implements DistanceTable.
func (t *DenseTable) Distance(from, to int) (float64, bool) {
	i, ok := t.index[from]
	if !ok {
		return 0, false
	}
	j, ok := t.index[to]
	if !ok {
		return 0, false
	}
	d := t.m.At(i, j)
	if math.IsNaN(d) {
		return 0, false
	}
	return d, true
}

// IDs returns the table's ids in row order.
func (t *DenseTable) IDs() []int {
	out := make([]int, len(t.ids))
	copy(out, t.ids)
	return out
}

// Matrix exposes the underlying matrix read-only. Unset entries are NaN.
func (t *DenseTable) Matrix() mat.Matrix {
	return t.m
}

// lookup returns the distance for a pair or a wrapped ErrMissingDistance.
func lookup(t DistanceTable, from, to int) (float64, error) {
	d, ok := t.Distance(from, to)
	if !ok {
		return 0, fmt.Errorf("pair (%d, %d): %w", from, to, ErrMissingDistance)
	}
	return d, nil
}
