package papersources

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound calls to a provider with a token bucket.
// It is safe for concurrent use because rate.Limiter is.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing ratePerSecond sustained calls
// with bursts of up to burst calls.
//
// Example configurations:
//   - OpenAlex polite pool: NewRateLimiter(10, 10)
//   - Crossref polite pool: NewRateLimiter(50, 10)
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// Wait blocks until a call is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Allow reports whether a call may happen now, consuming a token if so.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Limit returns the configured sustained rate.
func (r *RateLimiter) Limit() float64 {
	return float64(r.limiter.Limit())
}

// Burst returns the configured burst size.
func (r *RateLimiter) Burst() int {
	return r.limiter.Burst()
}
