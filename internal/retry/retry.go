// Package retry provides a small bounded-backoff combinator.
//
// The combinator is deliberately decoupled from what it wraps: callers
// hand it a closure and a Policy, nothing else. The outbox uses it
// around a single sink push attempt.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy bounds a retried operation: at most MaxAttempts tries, with an
// exponentially doubling delay starting at BaseDelay between them.
// Jitter transforms each computed delay; nil means FullJitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      func(time.Duration) time.Duration
}

// Do runs fn until it succeeds, the policy is exhausted, or the context
// is cancelled. Sleeps between attempts are context-aware, so
// cancellation abandons an in-flight backoff promptly.
//
// Returns nil on success, ctx.Err() on cancellation, and the last
// attempt's error (wrapped with the attempt count) on exhaustion.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = FullJitter
	}

	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(jitter(delay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// FullJitter picks a uniformly random delay in [0, d]. Randomizing the
// whole interval spreads retries from concurrent processes instead of
// synchronizing them.
func FullJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(d) + 1))
}

// NoJitter returns the delay unchanged. Useful in tests that assert
// exact timing.
func NoJitter(d time.Duration) time.Duration {
	return d
}
