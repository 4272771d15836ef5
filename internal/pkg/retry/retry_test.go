package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type recordingSleep struct {
	waits []time.Duration
}

func (r *recordingSleep) Sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func TestPolicy_Backoff(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(2))
	assert.Equal(t, 4*time.Second, p.Backoff(3))
	assert.Equal(t, 4*time.Second, p.Backoff(10))
	assert.Equal(t, time.Duration(0), p.Backoff(0))
}

func TestPolicy_DoSucceedsAfterTransientFailures(t *testing.T) {
	sleeper := &recordingSleep{}
	p := DefaultPolicy()
	p.Sleep = sleeper.Sleep

	calls := 0
	attempts, err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errBoom
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
}

func TestPolicy_DoExhaustsAttempts(t *testing.T) {
	sleeper := &recordingSleep{}
	p := DefaultPolicy()
	p.Sleep = sleeper.Sleep

	attempts, err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, attempts)
	assert.Len(t, sleeper.waits, 2)
}

func TestPolicy_DoStopsOnNonRetryable(t *testing.T) {
	errFinal := errors.New("final")
	sleeper := &recordingSleep{}
	p := DefaultPolicy()
	p.Sleep = sleeper.Sleep
	p.Retryable = func(err error) bool { return !errors.Is(err, errFinal) }

	attempts, err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		return errFinal
	})

	assert.ErrorIs(t, err, errFinal)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeper.waits)
}

func TestPolicy_DoStopsWhenSleepIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DefaultPolicy()
	attempts, err := p.Do(ctx, func(ctx context.Context, attempt int) error {
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, attempts)
}
