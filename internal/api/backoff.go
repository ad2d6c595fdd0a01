package api

import (
	"context"
	"time"
)

// Backoff is the shared retry curve: every retry and poll wait in this layer
// follows it. The wait never shrinks and never exceeds Max; there is no
// attempt cap, so callers needing a bound must cancel through their context.
type Backoff struct {
	Initial time.Duration
	Factor  float64
	Max     time.Duration
}

// DefaultBackoff returns the curve used across the layer: 500ms doubling up
// to a 5s ceiling.
func DefaultBackoff() Backoff {
	return Backoff{Initial: 500 * time.Millisecond, Factor: 2, Max: 5 * time.Second}
}

// Next returns the wait that follows current. A zero current yields Initial.
func (b Backoff) Next(current time.Duration) time.Duration {
	if current <= 0 {
		return b.Initial
	}
	next := time.Duration(float64(current) * b.Factor)
	if next > b.Max {
		return b.Max
	}
	return next
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
