package retry

import (
	"context"
	"time"
)

// Policy is a bounded exponential-backoff retry policy.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Retryable decides whether an error is worth another attempt.
	// nil means every error is retried.
	Retryable func(error) bool

	// Sleep waits between attempts. nil uses a timer that honours ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy makes 3 attempts waiting 1s then 2s, capped at 4s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     4 * time.Second,
	}
}

// Backoff returns the wait after the given 1-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.InitialBackoff <= 0 {
		return 0
	}
	d := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. It returns the number of attempts made and the last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	limit := p.MaxAttempts
	if limit < 1 {
		limit = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = timerSleep
	}

	var err error
	for attempt := 1; attempt <= limit; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return attempt, err
		}
		if attempt == limit {
			return attempt, err
		}
		if serr := sleep(ctx, p.Backoff(attempt)); serr != nil {
			return attempt, err
		}
	}
	return limit, err
}

func timerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
