// Package retry wraps fallible operations in retry-with-exponential-backoff.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Config bounds one retried operation.
type Config struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int

	// BaseDelay is the wait after the first failure; attempt n waits
	// BaseDelay * 2^(n-1).
	BaseDelay time.Duration
}

// DefaultConfig returns the attempt budget used for remote calendar and
// provider calls.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// Do runs op up to cfg.MaxAttempts times, sleeping exponentially between
// failures. Every failure is retried up to the budget; there is no
// classification of retryable vs. fatal errors, and no jitter. On exhaustion
// the last observed error is surfaced unchanged. Side effects of op are not
// undone between attempts; callers are responsible for idempotency.
//
// The backoff sleep honors ctx cancellation, in which case the context's
// error is returned.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.BaseDelay << (attempt - 1)
		slog.Debug("operation failed, backing off",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
