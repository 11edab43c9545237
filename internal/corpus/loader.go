package corpus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/config"
	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
)

// Load opens the corpus configured by cfg. qdrant may be nil for the local backend.
func Load(ctx context.Context, cfg *config.Config, qdrant *vectordb.Client, logger *zap.Logger) (*Corpus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Index.Backend {
	case "local":
		store, index, meta, err := Open(cfg.Index.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded local index",
			zap.String("path", cfg.Index.Path),
			zap.Int("tickets", meta.Count),
			zap.Int("dimensions", meta.Dimensions),
			zap.String("embedder", meta.Embedder),
			zap.Time("built_at", meta.BuiltAt))
		c, err := New(index, store, cfg.Index.Path)
		if err != nil {
			return nil, err
		}
		c.Embedder = meta.Embedder
		return c, nil

	case "qdrant":
		if qdrant == nil {
			return nil, fmt.Errorf("qdrant backend selected but no client configured")
		}
		records, err := tickets.ReadCSV(cfg.Data.ReferenceCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference tickets: %w", err)
		}
		store := tickets.NewStore(records)

		dims, err := qdrant.CollectionDimensions(ctx, cfg.Index.Collection)
		if err != nil {
			return nil, err
		}
		count, err := qdrant.Count(ctx, cfg.Index.Collection)
		if err != nil {
			return nil, err
		}

		index := vectordb.NewQdrantIndex(qdrant, cfg.Index.Collection, dims, count)
		logger.Info("attached qdrant collection",
			zap.String("collection", cfg.Index.Collection),
			zap.Int("points", count),
			zap.Int("tickets", store.Len()),
			zap.Int("dimensions", dims))
		return New(index, store, "qdrant:"+cfg.Index.Collection)

	default:
		return nil, fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
}
