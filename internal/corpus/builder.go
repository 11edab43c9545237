package corpus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/embedding"
	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

// Builder embeds tickets in batches and produces a corpus
type Builder struct {
	embedder  embedding.Provider
	batchSize int
	logger    *zap.Logger

	// OnProgress, if set, is called after each batch with tickets embedded so far
	OnProgress func(done, total int)
}

// NewBuilder creates a builder
func NewBuilder(embedder embedding.Provider, batchSize int, logger *zap.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Prepare drops tickets with no embeddable text and renumbers the rest
func Prepare(records []models.Ticket) (*tickets.Store, int) {
	kept := make([]models.Ticket, 0, len(records))
	for _, t := range records {
		if strings.TrimSpace(embedding.PrepareTicketText(&t)) == "" {
			continue
		}
		kept = append(kept, t)
	}
	return tickets.NewStore(kept), len(records) - len(kept)
}

// BuildLocal embeds every ticket into an in-memory flat index
func (b *Builder) BuildLocal(ctx context.Context, records []models.Ticket) (*Corpus, *models.IndexStats, error) {
	start := time.Now()
	store, skipped := Prepare(records)
	index := vectordb.NewFlatIndex(b.embedder.Dimensions())

	err := b.embedAll(ctx, store, func(batch []*models.Ticket, vectors [][]float32) error {
		for i, vec := range vectors {
			pos, err := index.Add(vec)
			if err != nil {
				return err
			}
			if pos != batch[i].Position {
				return fmt.Errorf("%w: vector %d added at %d", ErrCorruptIndex, batch[i].Position, pos)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	c, err := New(index, store, "memory")
	if err != nil {
		return nil, nil, err
	}
	return c, b.stats(len(records), store.Len(), skipped, start), nil
}

// BuildQdrant recreates collection and upserts every ticket into it. The
// returned store must be persisted alongside (as the reference CSV).
func (b *Builder) BuildQdrant(ctx context.Context, client *vectordb.Client, collection string, records []models.Ticket) (*tickets.Store, *models.IndexStats, error) {
	start := time.Now()
	store, skipped := Prepare(records)

	if err := client.RecreateCollection(ctx, collection, b.embedder.Dimensions()); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare collection: %w", err)
	}

	err := b.embedAll(ctx, store, func(batch []*models.Ticket, vectors [][]float32) error {
		return client.UpsertBatch(ctx, collection, batch, vectors)
	})
	if err != nil {
		return nil, nil, err
	}

	return store, b.stats(len(records), store.Len(), skipped, start), nil
}

func (b *Builder) embedAll(ctx context.Context, store *tickets.Store, sink func([]*models.Ticket, [][]float32) error) error {
	all := store.All()
	total := len(all)

	for i := 0; i < total; i += b.batchSize {
		end := i + b.batchSize
		if end > total {
			end = total
		}

		batch := make([]*models.Ticket, 0, end-i)
		texts := make([]string, 0, end-i)
		for j := i; j < end; j++ {
			batch = append(batch, &all[j])
			texts = append(texts, embedding.PrepareTicketText(&all[j]))
		}

		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed tickets %d-%d: %w", i, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d tickets", len(vectors), len(batch))
		}
		for j, v := range vectors {
			if len(v) != b.embedder.Dimensions() {
				return fmt.Errorf("%w: ticket %d got %d, want %d",
					vectordb.ErrDimensionMismatch, batch[j].Position, len(v), b.embedder.Dimensions())
			}
		}

		if err := sink(batch, vectors); err != nil {
			return fmt.Errorf("failed to store tickets %d-%d: %w", i, end, err)
		}

		b.logger.Debug("embedded batch", zap.Int("from", i), zap.Int("to", end), zap.Int("total", total))
		if b.OnProgress != nil {
			b.OnProgress(end, total)
		}
	}

	return nil
}

func (b *Builder) stats(totalRows, indexed, skipped int, start time.Time) *models.IndexStats {
	st := &models.IndexStats{
		TotalRows:  totalRows,
		Indexed:    indexed,
		Skipped:    skipped,
		Dimensions: b.embedder.Dimensions(),
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	b.logger.Info("index built",
		zap.Int("rows", st.TotalRows),
		zap.Int("indexed", st.Indexed),
		zap.Int("skipped", st.Skipped),
		zap.Int("duration_ms", st.DurationMs))
	return st
}
