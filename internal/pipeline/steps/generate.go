package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/llm"
	"github.com/Kavirubc/ticketrag/internal/metrics"
	"github.com/Kavirubc/ticketrag/internal/pipeline/core"
	"github.com/Kavirubc/ticketrag/internal/retry"
)

// Generate asks the language model for an answer. Generation failures never
// fail the query: the result keeps its hits and carries the context instead.
type Generate struct {
	provider     llm.Provider
	providerName string
	timeout      time.Duration
	policy       retry.Policy
	logger       *zap.Logger
}

// NewGenerate creates a generate step
func NewGenerate(provider llm.Provider, providerName string, timeout time.Duration, policy retry.Policy, logger *zap.Logger) *Generate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if providerName == "" {
		providerName = "none"
	}
	return &Generate{
		provider:     provider,
		providerName: providerName,
		timeout:      timeout,
		policy:       policy,
		logger:       logger,
	}
}

func (s *Generate) Name() string {
	return "generate"
}

func (s *Generate) Run(ctx *core.Context) error {
	start := time.Now()
	text, err := retry.Do(ctx.Ctx, s.policy, func(c context.Context) (string, error) {
		return s.complete(c, ctx.System, ctx.Prompt)
	})
	metrics.GenerationDuration.WithLabelValues(s.providerName).Observe(time.Since(start).Seconds())

	if err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			err = errors.New("generator returned an empty answer")
		}
	}

	if err != nil {
		status := "error"
		switch {
		case errors.Is(err, llm.ErrDisabled):
			status = "disabled"
		case errors.Is(err, core.ErrGenerationTimeout):
			status = "timeout"
		}
		metrics.GenerationTotal.WithLabelValues(s.providerName, status).Inc()

		s.logger.Warn("answer generation failed, returning retrieved context",
			zap.String("provider", s.providerName),
			zap.Error(err))

		ctx.Result.GenerationFailed = true
		ctx.Result.Answer = ""
		ctx.Result.Context = ctx.Evidence.Text
		ctx.AddNotice(failureNote(err))
		return nil
	}

	metrics.GenerationTotal.WithLabelValues(s.providerName, "success").Inc()
	ctx.Result.Answer = text
	return nil
}

func (s *Generate) complete(ctx context.Context, system, prompt string) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		text string
		err  error
	)
	if system != "" {
		text, err = s.provider.CompleteWithSystem(callCtx, system, prompt)
	} else {
		text, err = s.provider.Complete(callCtx, prompt)
	}
	if err == nil {
		return text, nil
	}

	switch {
	case errors.Is(err, llm.ErrDisabled):
		return "", retry.Permanent(err)
	case ctx.Err() != nil:
		return "", retry.Permanent(ctx.Err())
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return "", fmt.Errorf("%w after %s", core.ErrGenerationTimeout, s.timeout)
	}
	return "", err
}

func failureNote(err error) string {
	switch {
	case errors.Is(err, llm.ErrDisabled):
		return "answer generation unavailable; showing the retrieved ticket context instead"
	case errors.Is(err, core.ErrGenerationTimeout):
		return "answer generation timed out; showing the retrieved ticket context instead"
	}
	return fmt.Sprintf("answer generation failed (%v); showing the retrieved ticket context instead", err)
}
