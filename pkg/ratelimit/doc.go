// Package ratelimit paces outbound requests to the catalog service and the
// file listing host.
//
// TokenBucket wraps golang.org/x/time/rate behind the small Limiter
// interface the stages depend on. Wait honors context cancellation, so a
// SIGINT during a long pacing delay stops the stage promptly.
//
//	limiter := ratelimit.FromSettings(cfg.RateLimit)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
