// Package retrieval maps a free-text query to ranked, deduplicated tickets.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/corpus"
	"github.com/Kavirubc/ticketrag/internal/embedding"
	"github.com/Kavirubc/ticketrag/internal/metrics"
	"github.com/Kavirubc/ticketrag/internal/retry"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

// Searcher is anything that can answer retrieve(query, top_k)
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.Hit, error)
}

// Options tunes how the retriever calls the embedder
type Options struct {
	EmbedTimeout time.Duration
	Retry        retry.Policy
}

// Retriever ranks tickets of the currently published corpus against a query
type Retriever struct {
	holder   *corpus.Holder
	embedder embedding.Provider
	opts     Options
	logger   *zap.Logger
}

// New creates a retriever
func New(holder *corpus.Holder, embedder embedding.Provider, opts Options, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = 15 * time.Second
	}
	if opts.Retry.Attempts < 1 {
		opts.Retry = retry.DefaultPolicy()
	}
	return &Retriever{
		holder:   holder,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
	}
}

// Retrieve returns at most min(topK, corpus size) hits, best first. Scores are
// not filtered here; whether they are good enough is the assembler's call.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	// one snapshot for the whole call, even if a reload swaps mid-query
	c := r.holder.Load()
	if c == nil {
		return nil, ErrIndexUnavailable
	}
	if c.Len() == 0 {
		return []models.Hit{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	}()

	k := ClampTopK(topK, c.Len())

	vector, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vector) != c.Index.Dimensions() {
		return nil, fmt.Errorf("%w: query vector has %d, index has %d",
			ErrDimensionMismatch, len(vector), c.Index.Dimensions())
	}

	neighbors, err := c.Index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	metric := c.Index.Metric()
	hits := make([]models.Hit, 0, len(neighbors))
	seenPos := make(map[int]bool, len(neighbors))
	seenID := make(map[string]bool, len(neighbors))

	for _, n := range neighbors {
		if n.Position < 0 || seenPos[n.Position] {
			continue
		}
		seenPos[n.Position] = true

		t, err := c.Ticket(n.Position)
		if err != nil {
			return nil, err
		}
		if t.TicketID != "" {
			if seenID[t.TicketID] {
				continue
			}
			seenID[t.TicketID] = true
		}

		hits = append(hits, models.Hit{
			Ticket:     t,
			Similarity: Similarity(metric, n.Distance),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}

	r.logger.Debug("retrieved",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Uint64("generation", c.Generation()),
		zap.Duration("took", time.Since(start)))

	return hits, nil
}

// Generation reports the generation of the corpus currently published
func (r *Retriever) Generation() uint64 {
	if c := r.holder.Load(); c != nil {
		return c.Generation()
	}
	return 0
}

// CorpusSize returns the number of tickets in the published corpus
func (r *Retriever) CorpusSize() int {
	if c := r.holder.Load(); c != nil {
		return c.Len()
	}
	return 0
}

func (r *Retriever) embed(ctx context.Context, query string) ([]float32, error) {
	return retry.Do(ctx, r.opts.Retry, func(ctx context.Context) ([]float32, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.opts.EmbedTimeout)
		defer cancel()

		vec, err := r.embedder.Embed(callCtx, query)
		if err == nil {
			return vec, nil
		}
		if ctx.Err() != nil {
			return nil, retry.Permanent(ctx.Err())
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			r.logger.Warn("embedding timed out", zap.Duration("timeout", r.opts.EmbedTimeout))
			return nil, fmt.Errorf("%w after %s", ErrEmbeddingTimeout, r.opts.EmbedTimeout)
		}
		r.logger.Warn("embedding failed", zap.Error(err))
		return nil, fmt.Errorf("failed to embed query: %w", err)
	})
}
