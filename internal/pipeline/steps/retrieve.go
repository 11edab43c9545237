package steps

import (
	"fmt"

	"github.com/Kavirubc/ticketrag/internal/pipeline/core"
	"github.com/Kavirubc/ticketrag/internal/retrieval"
)

// Retrieve finds the tickets most similar to the query.
type Retrieve struct {
	searcher retrieval.Searcher
}

// NewRetrieve creates a retrieve step
func NewRetrieve(searcher retrieval.Searcher) *Retrieve {
	return &Retrieve{searcher: searcher}
}

func (s *Retrieve) Name() string {
	return "retrieve"
}

func (s *Retrieve) Run(ctx *core.Context) error {
	hits, err := s.searcher.Retrieve(ctx.Ctx, ctx.Query, ctx.TopK)
	if err != nil {
		return fmt.Errorf("could not search: %w", err)
	}

	ctx.Hits = hits
	ctx.Result.Hits = hits
	return nil
}
