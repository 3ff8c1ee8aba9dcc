package orchestrator

import (
	"context"
	"time"
)

const (
	backoffBase = 1000 * time.Millisecond
	backoffCap  = 5000 * time.Millisecond
)

// backoffDelay returns the pause after the n-th failed attempt (1-based):
// 1s, 2s, 4s, then capped at 5s.
func backoffDelay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := backoffBase
	for i := 1; i < n; i++ {
		d *= 2
		if d >= backoffCap {
			return backoffCap
		}
	}
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
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
