package retry

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

// Hooks observe the retry loop. Nil fields are ignored.
type Hooks struct {
	// OnRetry is called before sleeping ahead of retry number attempt (1-based).
	OnRetry func(attempt int, delay time.Duration, err error)
	// OnExhausted is called once when the retry budget is spent.
	OnExhausted func(attempts int, err error)
}

// Do invokes fn until it succeeds, returns a permanent error, or the policy's retry
// budget is spent. Permanent errors (see errors.IsPermanent) are returned immediately
// without further attempts. A canceled context stops the loop between attempts.
func Do(ctx context.Context, p Policy, hooks Hooks, fn func(ctx context.Context) error) error {
	var lastErr error
	attempts := p.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt)
			if hooks.OnRetry != nil {
				hooks.OnRetry(attempt, delay, lastErr)
			}
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.IsPermanent(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	if hooks.OnExhausted != nil {
		hooks.OnExhausted(attempts, lastErr)
	}
	return fmt.Errorf("retries exhausted after %d attempts: %w", attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
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
