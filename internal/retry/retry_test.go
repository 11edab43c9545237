package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), fastPolicy(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastError(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	_, err := Do(context.Background(), fastPolicy(2), func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	bad := errors.New("bad input")
	_, err := Do(context.Background(), fastPolicy(5), func(context.Context) (int, error) {
		calls++
		return 0, Permanent(bad)
	})

	assert.Equal(t, bad, err)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastPolicy(5), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("slow")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, _ = Do(context.Background(), Policy{}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("x")
	})
	assert.Equal(t, 1, calls)
}

func TestBackoff(t *testing.T) {
	p := Policy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}
	assert.Equal(t, 100*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 300*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 900*time.Millisecond, p.Backoff(2))
	assert.Equal(t, time.Second, p.Backoff(3))
	assert.Equal(t, time.Second, p.Backoff(10))
}
