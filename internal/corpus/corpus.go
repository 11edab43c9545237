// Package corpus pairs the similarity index with the ticket store it was
// built from, and manages loading, persisting and swapping that pair.
package corpus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

// ErrCorruptIndex means the index refers to rows the ticket store does not have
var ErrCorruptIndex = errors.New("index and ticket store are out of sync")

// Corpus is an immutable index + store snapshot. Build a new one to change either.
type Corpus struct {
	Index    vectordb.Index
	Store    *tickets.Store
	Source   string
	LoadedAt time.Time

	// Embedder names the model the vectors were built with, when known
	Embedder string

	generation uint64
}

// New validates that index and store describe the same rows
func New(index vectordb.Index, store *tickets.Store, source string) (*Corpus, error) {
	if index == nil || store == nil {
		return nil, fmt.Errorf("%w: missing index or store", ErrCorruptIndex)
	}
	if index.Len() != store.Len() {
		return nil, fmt.Errorf("%w: index has %d vectors, store has %d tickets",
			ErrCorruptIndex, index.Len(), store.Len())
	}
	return &Corpus{
		Index:    index,
		Store:    store,
		Source:   source,
		LoadedAt: time.Now(),
	}, nil
}

// Ticket resolves an index position
func (c *Corpus) Ticket(position int) (models.Ticket, error) {
	t, ok := c.Store.Get(position)
	if !ok {
		return models.Ticket{}, fmt.Errorf("%w: position %d not in store of %d",
			ErrCorruptIndex, position, c.Store.Len())
	}
	return t, nil
}

// CheckDimensions verifies the index accepts vectors from an embedder of width dims
func (c *Corpus) CheckDimensions(dims int) error {
	if c.Index.Dimensions() != dims {
		return fmt.Errorf("%w: embedder produces %d, index expects %d",
			vectordb.ErrDimensionMismatch, dims, c.Index.Dimensions())
	}
	return nil
}

// CheckEmbedder verifies the index was built with the model named embedder.
// Corpora with no recorded model pass.
func (c *Corpus) CheckEmbedder(embedder string) error {
	if c.Embedder != "" && c.Embedder != embedder {
		return fmt.Errorf("%w: index was built with %s, queries would use %s; rebuild the index",
			ErrCorruptIndex, c.Embedder, embedder)
	}
	return nil
}

// Len returns the number of tickets
func (c *Corpus) Len() int {
	return c.Store.Len()
}

// Generation identifies the swap that published this corpus (0 if never published)
func (c *Corpus) Generation() uint64 {
	return c.generation
}
