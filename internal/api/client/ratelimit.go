package client

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter throttles calls to the catalog API with a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
	granted atomic.Int64
}

// NewRateLimiter creates a rate limiter with the given per-second rate and
// burst size. A non-positive rate disables throttling.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the limiter allows the call, or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	r.granted.Add(1)
	return nil
}

// Granted returns how many calls the limiter has let through.
func (r *RateLimiter) Granted() int64 {
	return r.granted.Load()
}

// Limit returns the configured per-second rate.
func (r *RateLimiter) Limit() rate.Limit {
	return r.limiter.Limit()
}

// Burst returns the configured burst size.
func (r *RateLimiter) Burst() int {
	return r.limiter.Burst()
}
