package steps

import (
	"github.com/Kavirubc/ticketrag/internal/answer"
	"github.com/Kavirubc/ticketrag/internal/pipeline/core"
)

// Assemble packs the hits into the generator context and sets sufficiency.
type Assemble struct {
	assembler *answer.Assembler
}

// NewAssemble creates an assemble step
func NewAssemble(assembler *answer.Assembler) *Assemble {
	return &Assemble{assembler: assembler}
}

func (s *Assemble) Name() string {
	return "assemble"
}

func (s *Assemble) Run(ctx *core.Context) error {
	ctx.Evidence = s.assembler.Assemble(ctx.Hits, ctx.MaxChars)
	ctx.Result.Sufficient = ctx.Evidence.Sufficient
	ctx.Result.Context = ctx.Evidence.Text
	ctx.AddNotice(ctx.Evidence.Notice)
	return nil
}
