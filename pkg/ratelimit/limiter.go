package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"skycache/pkg/config"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Wait blocks until the rate limit allows another request or ctx ends
	Wait(ctx context.Context) error
}

// TokenBucket paces requests with a golang.org/x/time/rate token bucket
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows burst requests at once, refilled at one token per interval
func NewTokenBucket(burst int, interval time.Duration) *TokenBucket {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &TokenBucket{limiter: rate.NewLimiter(limit, burst)}
}

// FromSettings builds a limiter for requests_per_minute with the configured burst
func FromSettings(s config.RateLimitConfig) *TokenBucket {
	if s.RequestsPerMinute <= 0 {
		return NewTokenBucket(s.BurstSize, 0)
	}
	return NewTokenBucket(s.BurstSize, time.Minute/time.Duration(s.RequestsPerMinute))
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.limiter.Wait(ctx)
}

// Unlimited never blocks
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
