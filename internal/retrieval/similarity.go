package retrieval

import (
	"math"

	"github.com/Kavirubc/ticketrag/internal/vectordb"
)

// Similarity converts a raw index distance to a score in [0,1], higher is closer.
//
//	l2:     s = 1 / (1 + d)   d is squared Euclidean distance
//	cosine: s = 1 - d/2       d is 1 - cos, so s = (1 + cos) / 2
//
// Both are monotonic in d, so ordering by distance and by score agree.
func Similarity(metric vectordb.Metric, distance float64) float64 {
	if math.IsNaN(distance) {
		return 0
	}

	var s float64
	switch metric {
	case vectordb.MetricCosine:
		s = 1 - distance/2
	default:
		if distance < 0 {
			distance = 0
		}
		s = 1 / (1 + distance)
	}

	return math.Max(0, math.Min(1, s))
}

// ClampTopK bounds k to [1, size]
func ClampTopK(k, size int) int {
	if k < 1 {
		k = 1
	}
	if k > size {
		k = size
	}
	return k
}
