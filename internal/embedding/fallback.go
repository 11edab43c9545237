package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/config"
)

// ErrModelSwitch means the primary failed after it had already produced
// vectors, so switching to the fallback would mix two models in one index.
var ErrModelSwitch = errors.New("refusing to mix embedding models")

const (
	servedNone int32 = iota
	servedPrimary
	servedFallback
)

// FallbackProvider wraps primary and fallback providers. The first provider to
// answer is kept for the provider's lifetime: vectors from different models are
// not comparable, even at the same width.
type FallbackProvider struct {
	primary      Provider
	fallback     Provider
	primaryName  string
	fallbackName string
	logger       *zap.Logger

	served atomic.Int32
}

// NewFallbackProvider creates a provider with primary and optional fallback
func NewFallbackProvider(ctx context.Context, cfg *config.EmbeddingConfig, logger *zap.Logger) (*FallbackProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	primary, err := NewProvider(ctx, &cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	var fallback Provider
	if cfg.Fallback.Provider != "" {
		fallback, err = NewProvider(ctx, &cfg.Fallback)
		if err != nil {
			logger.Warn("failed to create fallback embedding provider", zap.Error(err))
			fallback = nil
		} else if fallback.Dimensions() != primary.Dimensions() {
			logger.Warn("fallback embedding provider disabled: dimension mismatch",
				zap.Int("primary", primary.Dimensions()),
				zap.Int("fallback", fallback.Dimensions()))
			fallback = nil
		}
	}

	p := NewFallback(primary, fallback, logger)
	p.primaryName = ModelName(&cfg.Primary)
	p.fallbackName = ModelName(&cfg.Fallback)
	return p, nil
}

// NewFallback composes existing providers
func NewFallback(primary, fallback Provider, logger *zap.Logger) *FallbackProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackProvider{
		primary:      primary,
		fallback:     fallback,
		primaryName:  "primary",
		fallbackName: "fallback",
		logger:       logger,
	}
}

// ModelName identifies the model behind cfg, as recorded in index snapshots
func ModelName(cfg *config.ProviderConfig) string {
	if cfg.Model == "" {
		return cfg.Provider
	}
	return cfg.Provider + "/" + cfg.Model
}

// NewProvider creates a single provider based on config
func NewProvider(ctx context.Context, cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cfg.Dimensions)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Dimensions)
	case "hash":
		return NewHashProvider(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Embed generates an embedding with fallback on failure
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := p.do(ctx, func(prov Provider) error {
		v, err := prov.Embed(ctx, text)
		out = v
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for multiple texts with fallback
func (p *FallbackProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := p.do(ctx, func(prov Provider) error {
		v, err := prov.EmbedBatch(ctx, texts)
		out = v
		return err
	})
	return out, err
}

func (p *FallbackProvider) do(ctx context.Context, call func(Provider) error) error {
	if p.served.Load() == servedFallback {
		return call(p.fallback)
	}

	err := call(p.primary)
	if err == nil {
		p.served.CompareAndSwap(servedNone, servedPrimary)
		return nil
	}

	// an expired deadline is the caller's budget, not a provider fault
	if p.fallback == nil || ctx.Err() != nil {
		return fmt.Errorf("primary embedding failed (no fallback): %w", err)
	}
	if p.served.Load() == servedPrimary {
		return fmt.Errorf("%w: %s failed after producing vectors: %w", ErrModelSwitch, p.primaryName, err)
	}

	p.logger.Warn("primary embedding failed, switching to fallback for this run",
		zap.String("primary", p.primaryName),
		zap.String("fallback", p.fallbackName),
		zap.Error(err))
	if err := call(p.fallback); err != nil {
		return err
	}
	p.served.CompareAndSwap(servedNone, servedFallback)
	return nil
}

// Name returns the model that produced this provider's vectors: the fallback
// once it has answered, the primary otherwise
func (p *FallbackProvider) Name() string {
	if p.served.Load() == servedFallback {
		return p.fallbackName
	}
	return p.primaryName
}

// Dimensions returns the primary provider's dimensionality
func (p *FallbackProvider) Dimensions() int {
	return p.primary.Dimensions()
}

// Close releases resources
func (p *FallbackProvider) Close() error {
	var errs []error
	if err := p.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.fallback != nil {
		if err := p.fallback.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
