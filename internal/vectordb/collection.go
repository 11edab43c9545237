package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// EnsureCollection creates a cosine collection of the given width if missing
func (c *Client) EnsureCollection(ctx context.Context, name string, dims int) error {
	exists, err := c.qdrant.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = c.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	indexes := []struct {
		field     string
		fieldType qdrant.FieldType
	}{
		{"position", qdrant.FieldType_FieldTypeInteger},
		{"ticket_id", qdrant.FieldType_FieldTypeKeyword},
		{"status", qdrant.FieldType_FieldTypeKeyword},
	}

	for _, idx := range indexes {
		_, err = c.qdrant.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      idx.field,
			FieldType:      qdrant.PtrOf(idx.fieldType),
		})
		if err != nil {
			// not fatal, filtering just gets slower
			c.logger.Warn("failed to create payload index",
				zap.String("collection", name), zap.String("field", idx.field), zap.Error(err))
		}
	}

	return nil
}

// RecreateCollection drops name if it exists and creates it empty
func (c *Client) RecreateCollection(ctx context.Context, name string, dims int) error {
	exists, err := c.qdrant.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		if err := c.qdrant.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
	}
	return c.EnsureCollection(ctx, name, dims)
}

// CollectionExists checks if a collection exists
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	return c.qdrant.CollectionExists(ctx, name)
}

// CollectionDimensions returns the vector width of a collection
func (c *Client) CollectionDimensions(ctx context.Context, name string) (int, error) {
	info, err := c.qdrant.GetCollectionInfo(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0, fmt.Errorf("collection %s has no single vector config", name)
	}
	return int(params.GetSize()), nil
}

// Count returns the exact number of points in a collection
func (c *Client) Count(ctx context.Context, name string) (int, error) {
	n, err := c.qdrant.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}
