package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

// UpsertBatch inserts or updates multiple ticket vectors
func (c *Client) UpsertBatch(ctx context.Context, collection string, tickets []*models.Ticket, vectors [][]float32) error {
	if len(tickets) != len(vectors) {
		return fmt.Errorf("tickets and vectors length mismatch")
	}

	points := make([]*qdrant.PointStruct, len(tickets))
	for i, t := range tickets {
		points[i] = ticketToPoint(t, vectors[i])
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("batch upsert failed: %w", err)
	}
	return nil
}

// ticketToPoint converts a Ticket to a Qdrant point. The payload carries the
// store position so hits resolve against the local ticket store.
func ticketToPoint(t *models.Ticket, vector []float32) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(t.UUID()),
		Vectors: qdrant.NewVectors(vector...),
		Payload: map[string]*qdrant.Value{
			"position":     qdrant.NewValueInt(int64(t.Position)),
			"ticket_id":    qdrant.NewValueString(t.TicketID),
			"summary":      qdrant.NewValueString(t.Summary),
			"status":       qdrant.NewValueString(t.Status),
			"content_hash": qdrant.NewValueString(t.ContentHash()),
		},
	}
}
