// Package pipeline runs a query through retrieval, context assembly and
// answer generation.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/answer"
	"github.com/Kavirubc/ticketrag/internal/llm"
	"github.com/Kavirubc/ticketrag/internal/metrics"
	"github.com/Kavirubc/ticketrag/internal/pipeline/core"
	"github.com/Kavirubc/ticketrag/internal/retrieval"
	"github.com/Kavirubc/ticketrag/internal/retry"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

// ErrGenerationTimeout is recorded when the generator does not answer in time.
// It never fails a query; see models.Answer.GenerationFailed.
var ErrGenerationTimeout = core.ErrGenerationTimeout

// Deps are the collaborators of a Processor
type Deps struct {
	Searcher          retrieval.Searcher
	Assembler         *answer.Assembler
	Generator         llm.Provider
	GeneratorName     string
	GenerationTimeout time.Duration
	Retry             retry.Policy
	MaxChars          int
}

// Processor answers questions over the ticket corpus
type Processor struct {
	maxChars int
	logger   *zap.Logger

	answerPipe  []core.Step
	insightPipe []core.Step
	searchPipe  []core.Step
}

// New creates a processor
func New(deps Deps, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Searcher == nil {
		return nil, errors.New("pipeline needs a searcher")
	}
	if deps.Assembler == nil {
		deps.Assembler = answer.NewAssembler(answer.DefaultThresholds())
	}
	if deps.Generator == nil {
		deps.Generator = llm.Disabled{}
	}
	if deps.MaxChars <= 0 {
		deps.MaxChars = answer.DefaultMaxChars
	}

	builder := NewBuilder(deps, logger)
	answerPipe, err := builder.Build(AnswerSteps)
	if err != nil {
		return nil, err
	}
	insightPipe, err := builder.Build(InsightSteps)
	if err != nil {
		return nil, err
	}
	searchPipe, err := builder.Build(SearchSteps)
	if err != nil {
		return nil, err
	}

	return &Processor{
		maxChars:    deps.MaxChars,
		logger:      logger,
		answerPipe:  answerPipe,
		insightPipe: insightPipe,
		searchPipe:  searchPipe,
	}, nil
}

// Answer is answer_query: ranked hits, a sufficiency flag and a grounded
// answer, or the assembled context when generation is unavailable.
func (p *Processor) Answer(ctx context.Context, query string, topK int) (*models.Answer, error) {
	return p.run(ctx, p.answerPipe, query, topK)
}

// Insight runs the same retrieval but asks for an executive summary
func (p *Processor) Insight(ctx context.Context, query string, topK int) (*models.Answer, error) {
	return p.run(ctx, p.insightPipe, query, topK)
}

// Search returns hits only, without assembling or generating
func (p *Processor) Search(ctx context.Context, query string, topK int) ([]models.Hit, error) {
	pCtx, _, err := p.execute(ctx, p.searchPipe, query, topK)
	if err != nil {
		return nil, err
	}
	return pCtx.Result.Hits, nil
}

// execute runs pipe over a fresh context. On failure it also returns the
// name of the step that failed.
func (p *Processor) execute(ctx context.Context, pipe []core.Step, query string, topK int) (*core.Context, string, error) {
	query = strings.TrimSpace(query)
	pCtx := &core.Context{
		Ctx:      ctx,
		Query:    query,
		TopK:     topK,
		MaxChars: p.maxChars,
		Result:   &models.Answer{Query: query, Hits: []models.Hit{}},
	}

	for _, step := range pipe {
		if err := step.Run(pCtx); err != nil {
			return nil, step.Name(), err
		}
	}
	return pCtx, "", nil
}

func (p *Processor) run(ctx context.Context, pipe []core.Step, query string, topK int) (*models.Answer, error) {
	start := time.Now()

	pCtx, failed, err := p.execute(ctx, pipe, query, topK)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(failureOutcome(err)).Inc()
		p.logger.Debug("query failed", zap.String("step", failed), zap.Error(err))
		return nil, err
	}

	result := pCtx.Result
	result.DurationMs = int(time.Since(start).Milliseconds())
	metrics.QueriesTotal.WithLabelValues(outcome(result)).Inc()

	p.logger.Info("query answered",
		zap.Int("hits", len(result.Hits)),
		zap.Bool("sufficient", result.Sufficient),
		zap.Bool("generation_failed", result.GenerationFailed),
		zap.Int("duration_ms", result.DurationMs))

	return result, nil
}

func outcome(a *models.Answer) string {
	switch {
	case a.GenerationFailed:
		return "degraded"
	case !a.Sufficient:
		return "insufficient"
	}
	return "answered"
}

func failureOutcome(err error) string {
	if errors.Is(err, retrieval.ErrInvalidQuery) {
		return "invalid"
	}
	return "error"
}
