package engine

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// RetryConfig controls retry behavior for model calls.
type RetryConfig struct {
	MaxAttempts int // total attempts, including the first
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig: 3 attempts, waits of 1s then 2s (4s would follow a fourth attempt).
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 3,
	InitialWait: time.Second,
	MaxWait:     30 * time.Second,
	Multiplier:  2.0,
}

// backoff returns the wait after the given zero-based failed attempt.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	mult := rc.Multiplier
	if mult <= 0 {
		mult = 2
	}
	wait := time.Duration(float64(rc.InitialWait) * math.Pow(mult, float64(attempt)))
	if rc.MaxWait > 0 && wait > rc.MaxWait {
		wait = rc.MaxWait
	}
	return wait
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryDo runs fn up to MaxAttempts times with exponential backoff.
// Only transient errors are retried; quota and permanent errors return immediately.
// The returned int is the number of retries performed.
func retryDo[T any](ctx context.Context, rc RetryConfig, sleep func(context.Context, time.Duration) error, fn func() (T, error)) (T, int, error) {
	var zero T
	var lastErr error
	attempts := max(rc.MaxAttempts, 1)
	retries := 0

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return zero, retries, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, retries, nil
		}
		lastErr = err

		kind := KindOf(err)
		slog.Warn("llm call failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", attempts),
			slog.String("kind", kind.String()),
			slog.Any("error", err))

		if kind != KindTransient {
			return zero, retries, err
		}

		if attempt < attempts-1 {
			wait := rc.backoff(attempt)
			slog.Debug("retrying", slog.Int("attempt", attempt+1), slog.Duration("wait", wait))
			if err := sleep(ctx, wait); err != nil {
				return zero, retries, err
			}
			retries++
		}
	}
	return zero, retries, lastErr
}
