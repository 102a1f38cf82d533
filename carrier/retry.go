package carrier

import (
	"context"
	"errors"
	"time"
)

// ErrAttemptsExhausted is returned by Attempt when every attempt ran
// without producing a result or an error.
var ErrAttemptsExhausted = errors.New("all attempts exhausted without a result")

// RetryPolicy is an explicit retry policy value. Attempt-count semantics
// live here rather than in ad-hoc loops with mutable counters, so they are
// uniform across workflows and testable away from the browser.
type RetryPolicy struct {
	MaxAttempts       int
	PerAttemptTimeout time.Duration
}

// Attempt runs fn up to p.MaxAttempts times, each attempt under its own
// bounded context. fn reports done=true to stop with its value. A false
// done with nil error requests another attempt without failing the whole
// operation (e.g. a short-lived token went stale mid-call). An error also
// consumes an attempt; the last error is returned once attempts run out.
func Attempt[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.PerAttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.PerAttemptTimeout)
		}
		v, done, err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			lastErr = err
			continue
		}
		if done {
			return v, nil
		}
	}

	if lastErr != nil {
		return zero, lastErr
	}
	return zero, ErrAttemptsExhausted
}
