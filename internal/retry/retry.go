// Package retry runs calls to external providers with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/Kavirubc/ticketrag/internal/config"
)

const (
	defaultAttempts       = 3
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
)

// Policy bounds how often and how slowly a call is retried
type Policy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultPolicy is used when no configuration is available
func DefaultPolicy() Policy {
	return Policy{
		Attempts:       defaultAttempts,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// FromConfig converts the retry section of the config
func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		Attempts:       cfg.Attempts,
		InitialBackoff: time.Duration(cfg.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(cfg.MaxBackoffMs) * time.Millisecond,
	}
}

// Backoff returns the delay after attempt (0-based); exponential with cap
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 0; i < attempt && d < p.MaxBackoff; i++ {
		d = d * 3
		if d > p.MaxBackoff {
			d = p.MaxBackoff
		}
	}
	return d
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to p.Attempts times and returns its value. Errors marked
// Permanent and cancellation of ctx stop the loop early.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if attempt == attempts-1 || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			return zero, lastErr
		case <-time.After(p.Backoff(attempt)):
		}
	}
	return zero, lastErr
}
