package retrieval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kavirubc/ticketrag/internal/vectordb"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		metric   vectordb.Metric
		distance float64
		want     float64
	}{
		{"l2 identical", vectordb.MetricL2, 0, 1},
		{"l2 one", vectordb.MetricL2, 1, 0.5},
		{"l2 far", vectordb.MetricL2, 3, 0.25},
		{"l2 negative rounding", vectordb.MetricL2, -1e-9, 1},
		{"cosine identical", vectordb.MetricCosine, 0, 1},
		{"cosine orthogonal", vectordb.MetricCosine, 1, 0.5},
		{"cosine opposite", vectordb.MetricCosine, 2, 0},
		{"cosine overflow clamps", vectordb.MetricCosine, 2.5, 0},
		{"nan", vectordb.MetricL2, math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.metric, tt.distance), 1e-9)
		})
	}
}

func TestSimilarity_Monotonic(t *testing.T) {
	for _, m := range []vectordb.Metric{vectordb.MetricL2, vectordb.MetricCosine} {
		prev := Similarity(m, 0)
		for d := 0.1; d <= 2; d += 0.1 {
			s := Similarity(m, d)
			assert.LessOrEqual(t, s, prev, "metric %s distance %f", m, d)
			prev = s
		}
	}
}

func TestClampTopK(t *testing.T) {
	assert.Equal(t, 1, ClampTopK(0, 10))
	assert.Equal(t, 1, ClampTopK(-3, 10))
	assert.Equal(t, 5, ClampTopK(5, 10))
	assert.Equal(t, 10, ClampTopK(100, 10))
}
