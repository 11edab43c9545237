package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// Search queries a collection and returns neighbors with cosine distance
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Neighbor, error) {
	points, err := c.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayloadInclude("position"),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Neighbor, 0, len(points))
	for _, point := range points {
		pos := -1
		if v := point.Payload["position"]; v != nil {
			pos = int(v.GetIntegerValue())
		}
		results = append(results, Neighbor{
			Position: pos,
			Distance: 1 - float64(point.Score),
		})
	}

	return results, nil
}

// QdrantIndex serves an existing collection through the Index interface
type QdrantIndex struct {
	client     *Client
	collection string
	dims       int
	count      int
}

// NewQdrantIndex wraps a collection whose size and width are already known
func NewQdrantIndex(client *Client, collection string, dims, count int) *QdrantIndex {
	return &QdrantIndex{
		client:     client,
		collection: collection,
		dims:       dims,
		count:      count,
	}
}

// Search queries the collection
func (q *QdrantIndex) Search(ctx context.Context, vector []float32, k int) ([]Neighbor, error) {
	if len(vector) != q.dims {
		return nil, fmt.Errorf("%w: got %d, collection has %d", ErrDimensionMismatch, len(vector), q.dims)
	}
	if k <= 0 {
		return nil, nil
	}
	return q.client.Search(ctx, q.collection, vector, k)
}

// Len returns the point count observed at load time
func (q *QdrantIndex) Len() int {
	return q.count
}

// Dimensions returns the collection's vector width
func (q *QdrantIndex) Dimensions() int {
	return q.dims
}

// Metric returns MetricCosine
func (q *QdrantIndex) Metric() Metric {
	return MetricCosine
}
