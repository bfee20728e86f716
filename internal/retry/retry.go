// Package retry provides exponential-backoff retry with pluggable
// retryability classification. The same policy is reused at action level
// (one step attempt) and run level (the whole sequence).
package retry

import (
	"context"
	"strings"
	"time"
)

// DefaultMaxDelay caps the backoff delay between attempts.
const DefaultMaxDelay = 30 * time.Second

// retryableFragments are matched case-insensitively against error messages.
// They cover the transient failure modes seen from browser-driver transports.
var retryableFragments = []string{
	"timeout",
	"timed out",
	"network",
	"connection",
	"econnrefused",
	"socket",
	"cdp",
	"transport closed",
}

// Retryable is the default classifier: an error is retryable when its message
// contains any known transient-failure fragment.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range retryableFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// Options controls a retry loop.
type Options struct {
	// MaxAttempts is the total number of attempts; 1 degenerates to a plain call.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt; attempt i (0-indexed)
	// waits min(BaseDelay * 2^i, MaxDelay) after failing. No jitter: delays are
	// deterministic given the attempt index.
	BaseDelay time.Duration
	// MaxDelay caps the backoff. Zero means DefaultMaxDelay.
	MaxDelay time.Duration
	// ShouldRetry overrides the default classifier when non-nil.
	ShouldRetry func(error) bool
}

// Do runs op until it succeeds, a non-retryable error occurs, attempts are
// exhausted, or ctx is done. The last encountered error is returned verbatim
// once the budget runs out, so callers can inspect it.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts Options) (T, error) {
	var zero T
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	shouldRetry := opts.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = Retryable
	}

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, Delay(attempt-1, opts.BaseDelay, maxDelay)); err != nil {
				return zero, err
			}
		}

		val, err := op(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return zero, err
		}
	}
	return zero, lastErr
}

// Delay computes the backoff for the given 0-indexed attempt.
func Delay(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base << uint(attempt)
	// Guard shift overflow as well as the configured cap.
	if d <= 0 || d > max {
		return max
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
