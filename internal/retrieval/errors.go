package retrieval

import (
	"errors"

	"github.com/Kavirubc/ticketrag/internal/vectordb"
)

var (
	// ErrInvalidQuery is returned for empty or whitespace-only queries
	ErrInvalidQuery = errors.New("query is empty")

	// ErrDimensionMismatch means the embedder and index disagree on vector width
	ErrDimensionMismatch = vectordb.ErrDimensionMismatch

	// ErrEmbeddingTimeout is returned when the embedder does not answer in time
	ErrEmbeddingTimeout = errors.New("embedding timed out")

	// ErrIndexUnavailable is returned when no corpus has been loaded
	ErrIndexUnavailable = errors.New("ticket index is not loaded")
)
