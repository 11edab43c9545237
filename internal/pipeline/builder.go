package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/answer"
	"github.com/Kavirubc/ticketrag/internal/llm"
	"github.com/Kavirubc/ticketrag/internal/pipeline/core"
	"github.com/Kavirubc/ticketrag/internal/pipeline/steps"
	"github.com/Kavirubc/ticketrag/internal/retrieval"
	"github.com/Kavirubc/ticketrag/internal/retry"
)

// Step lists for the two query modes
var (
	AnswerSteps  = []string{"retrieve", "assemble", "prompt", "generate"}
	InsightSteps = []string{"retrieve", "assemble", "insight_prompt", "generate"}
	SearchSteps  = []string{"retrieve"}
)

// Builder constructs a pipeline of steps.
type Builder struct {
	searcher          retrieval.Searcher
	assembler         *answer.Assembler
	generator         llm.Provider
	generatorName     string
	generationTimeout time.Duration
	policy            retry.Policy
	logger            *zap.Logger
}

// NewBuilder creates a new pipeline builder
func NewBuilder(deps Deps, logger *zap.Logger) *Builder {
	return &Builder{
		searcher:          deps.Searcher,
		assembler:         deps.Assembler,
		generator:         deps.Generator,
		generatorName:     deps.GeneratorName,
		generationTimeout: deps.GenerationTimeout,
		policy:            deps.Retry,
		logger:            logger,
	}
}

// Build creates a pipeline from step names, in order
func (b *Builder) Build(names []string) ([]core.Step, error) {
	var pipe []core.Step
	for _, name := range names {
		step, err := b.createStep(name)
		if err != nil {
			return nil, err
		}
		pipe = append(pipe, step)
	}
	return pipe, nil
}

func (b *Builder) createStep(name string) (core.Step, error) {
	switch name {
	case "retrieve":
		return steps.NewRetrieve(b.searcher), nil
	case "assemble":
		return steps.NewAssemble(b.assembler), nil
	case "prompt":
		return steps.NewPrompt(), nil
	case "insight_prompt":
		return steps.NewInsightPrompt(), nil
	case "generate":
		return steps.NewGenerate(b.generator, b.generatorName, b.generationTimeout, b.policy, b.logger), nil
	default:
		return nil, fmt.Errorf("unknown step: %s", name)
	}
}
