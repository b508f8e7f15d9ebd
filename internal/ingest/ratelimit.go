package ingest

import (
	"context"
	"time"
)

// RateLimiter pauses for Pause after every Burst calls. External
// catalog services see at most Burst back-to-back requests.
type RateLimiter struct {
	Burst int
	Pause time.Duration
	calls int
}

func NewRateLimiter(burst int, pause time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{Burst: burst, Pause: pause}
}

// Wait counts one call and sleeps when the burst is spent. Returns the
// context error if cancelled mid-sleep.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.calls++
	if r.calls < r.Burst || r.Pause <= 0 {
		return nil
	}
	r.calls = 0
	select {
	case <-time.After(r.Pause):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
