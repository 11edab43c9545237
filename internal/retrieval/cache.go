package retrieval

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Kavirubc/ticketrag/internal/metrics"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

type cacheKey struct {
	generation uint64
	query      string
	k          int
}

// CachedRetriever memoises results per corpus generation. A reload bumps the
// generation, so entries from an older corpus are never served.
type CachedRetriever struct {
	inner *Retriever
	cache *lru.Cache[cacheKey, []models.Hit]
}

// NewCached wraps r with an LRU of the given size
func NewCached(r *Retriever, size int) (*CachedRetriever, error) {
	cache, err := lru.New[cacheKey, []models.Hit](size)
	if err != nil {
		return nil, err
	}
	return &CachedRetriever{inner: r, cache: cache}, nil
}

// Retrieve serves from cache when possible
func (c *CachedRetriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Hit, error) {
	trimmed := strings.TrimSpace(query)
	size := c.inner.CorpusSize()
	if trimmed == "" || size == 0 {
		return c.inner.Retrieve(ctx, query, topK)
	}

	key := cacheKey{
		generation: c.inner.Generation(),
		query:      trimmed,
		k:          ClampTopK(topK, size),
	}
	if hits, ok := c.cache.Get(key); ok {
		metrics.RetrievalCacheTotal.WithLabelValues("hit").Inc()
		return cloneHits(hits), nil
	}
	metrics.RetrievalCacheTotal.WithLabelValues("miss").Inc()

	hits, err := c.inner.Retrieve(ctx, trimmed, topK)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneHits(hits))
	return hits, nil
}

// Purge drops every cached entry
func (c *CachedRetriever) Purge() {
	c.cache.Purge()
}

func cloneHits(in []models.Hit) []models.Hit {
	out := make([]models.Hit, len(in))
	copy(out, in)
	return out
}
