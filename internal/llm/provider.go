package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kavirubc/ticketrag/internal/config"
)

// ErrDisabled is returned by the provider used when llm.provider is "none"
var ErrDisabled = errors.New("answer generation is disabled")

// Provider defines the interface for LLM text completion
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
	Close() error
}

// Options controls the size and sampling of completions
type Options struct {
	Model        string
	MaxNewTokens int
	Temperature  float32
}

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.MaxNewTokens <= 0 {
		o.MaxNewTokens = 512
	}
	return o
}

// New creates the provider selected by cfg
func New(ctx context.Context, cfg *config.LLMConfig) (Provider, error) {
	opts := Options{
		Model:        cfg.Model,
		MaxNewTokens: cfg.MaxNewTokens,
		Temperature:  cfg.Temperature,
	}

	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.APIKey, opts)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, opts)
	case "none", "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// Disabled is a Provider that never generates
type Disabled struct{}

// Complete always fails with ErrDisabled
func (Disabled) Complete(context.Context, string) (string, error) {
	return "", ErrDisabled
}

// CompleteWithSystem always fails with ErrDisabled
func (Disabled) CompleteWithSystem(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

// Close releases resources
func (Disabled) Close() error {
	return nil
}
