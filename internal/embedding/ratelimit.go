package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedProvider throttles calls to a remote embedding provider
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps p with a token bucket of rps requests per second.
// rps <= 0 returns p unchanged.
func NewRateLimited(p Provider, rps int) Provider {
	if rps <= 0 {
		return p
	}
	return &RateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Embed waits for a token, then embeds
func (p *RateLimitedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit wait: %w", err)
	}
	return p.inner.Embed(ctx, text)
}

// EmbedBatch waits for a token, then embeds the batch
func (p *RateLimitedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit wait: %w", err)
	}
	return p.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped provider's dimensionality
func (p *RateLimitedProvider) Dimensions() int {
	return p.inner.Dimensions()
}

// Close releases resources
func (p *RateLimitedProvider) Close() error {
	return p.inner.Close()
}
