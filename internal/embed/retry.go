package embed

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy configures retry behavior for embedding calls.
type RetryPolicy struct {
	MaxAttempts int           // Total attempts, including the first
	BaseDelay   time.Duration // Delay before the first retry
	MaxDelay    time.Duration // Cap on the delay between retries
	Multiplier  float64       // Exponential backoff multiplier
	CallTimeout time.Duration // Per-attempt timeout; 0 disables
}

// DefaultRetryPolicy returns the default policy: three attempts with a
// 2s base delay doubling between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    16 * time.Second,
		Multiplier:  2.0,
		CallTimeout: DefaultEmbedTimeout,
	}
}

// WithRetry executes fn with exponential backoff. Each attempt runs
// under the per-call timeout; an attempt that exceeds it counts as a
// transient failure like any other. Cancellation of the parent context
// aborts immediately.
func WithRetry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	delay := policy.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.CallTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.CallTimeout)
		}
		err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}
		lastErr = err

		// The parent being done is not a transient failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * policy.Multiplier)
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", policy.MaxAttempts, lastErr)
}
