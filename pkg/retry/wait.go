package retry

import (
	"context"
	"math/rand"
	"time"
)

// MaxJitter bounds the random addition applied to every wait
const MaxJitter = 100 * time.Millisecond

// Jitter returns a bounded random duration in [0, MaxJitter) added to each
// wait so many independent callers do not retry in lockstep
func Jitter() time.Duration {
	return time.Duration(rand.Int63n(int64(MaxJitter)))
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
