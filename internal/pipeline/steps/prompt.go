package steps

import (
	"github.com/Kavirubc/ticketrag/internal/answer"
	"github.com/Kavirubc/ticketrag/internal/pipeline/core"
)

// Prompt lays out the generator input from the assembled evidence.
type Prompt struct {
	insight bool
}

// NewPrompt creates the question-answering prompt step
func NewPrompt() *Prompt {
	return &Prompt{}
}

// NewInsightPrompt creates the executive-summary prompt step
func NewInsightPrompt() *Prompt {
	return &Prompt{insight: true}
}

func (s *Prompt) Name() string {
	if s.insight {
		return "insight_prompt"
	}
	return "prompt"
}

func (s *Prompt) Run(ctx *core.Context) error {
	if s.insight {
		ctx.System = answer.InsightInstruction
		ctx.Prompt = answer.BuildInsightPrompt(ctx.Evidence.Text, ctx.Query)
		return nil
	}

	ctx.System = ""
	ctx.Prompt = answer.BuildPrompt(answer.Instruction, ctx.Evidence.Text, ctx.Query)
	return nil
}
