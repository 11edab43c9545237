package vectordb

import (
	"context"
	"fmt"
	"sort"
)

// FlatIndex is an exact, in-memory squared-L2 index. Row i holds the vector of
// ticket store position i.
type FlatIndex struct {
	dims    int
	vectors [][]float32
}

// NewFlatIndex creates an empty index of the given width
func NewFlatIndex(dims int) *FlatIndex {
	return &FlatIndex{dims: dims}
}

// Add appends a vector and returns its position
func (f *FlatIndex) Add(vector []float32) (int, error) {
	if len(vector) != f.dims {
		return 0, fmt.Errorf("%w: got %d, index has %d", ErrDimensionMismatch, len(vector), f.dims)
	}
	v := make([]float32, len(vector))
	copy(v, vector)
	f.vectors = append(f.vectors, v)
	return len(f.vectors) - 1, nil
}

// Vector returns the stored vector at position
func (f *FlatIndex) Vector(position int) ([]float32, bool) {
	if position < 0 || position >= len(f.vectors) {
		return nil, false
	}
	return f.vectors[position], true
}

// Search scans every vector. Ties are ordered by position.
func (f *FlatIndex) Search(ctx context.Context, vector []float32, k int) ([]Neighbor, error) {
	if len(vector) != f.dims {
		return nil, fmt.Errorf("%w: got %d, index has %d", ErrDimensionMismatch, len(vector), f.dims)
	}
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := make([]Neighbor, len(f.vectors))
	for i, v := range f.vectors {
		all[i] = Neighbor{Position: i, Distance: squaredL2(vector, v)}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})

	if k > len(all) {
		k = len(all)
	}
	return all[:k], nil
}

// Len returns the number of vectors
func (f *FlatIndex) Len() int {
	return len(f.vectors)
}

// Dimensions returns the vector width
func (f *FlatIndex) Dimensions() int {
	return f.dims
}

// Metric returns MetricL2
func (f *FlatIndex) Metric() Metric {
	return MetricL2
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
