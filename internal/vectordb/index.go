package vectordb

import (
	"context"
	"errors"
)

// Metric identifies how an index measures distance
type Metric string

const (
	// MetricL2 is squared Euclidean distance, in [0, +inf)
	MetricL2 Metric = "l2"
	// MetricCosine is 1 - cosine similarity, in [0, 2]
	MetricCosine Metric = "cosine"
)

// ErrDimensionMismatch is returned when a vector does not match the index width
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Neighbor is a raw search result. Position refers to the ticket store row;
// a negative Position means the backend had no match for that slot.
type Neighbor struct {
	Position int
	Distance float64
}

// Index is a nearest-neighbour index over ticket vectors, read-only once built
type Index interface {
	// Search returns up to k neighbors ordered by increasing distance
	Search(ctx context.Context, vector []float32, k int) ([]Neighbor, error)
	Len() int
	Dimensions() int
	Metric() Metric
}
