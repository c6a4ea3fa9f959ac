// Package ratelimiter provides fixed-window rate limiting with pluggable
// storage backends.
//
// Each key (identity + action, e.g. "login:203.0.113.7") gets a counter
// that increments on every attempt and resets strictly after the decay
// window elapses. Once the count exceeds the configured maximum, further
// attempts are rejected until the window expires; Result.RetryAfter
// reports the remaining lockout.
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		MaxAttempts:  5,
//		DecayMinutes: 15,
//	})
//
//	result, err := limiter.Attempt(ctx, "login:"+ip)
//	if !result.Allowed() {
//		// reject with result.RetryAfter()
//	}
//
// The memory store suits single-instance deployments; the Redis store
// shares counters across instances.
package ratelimiter
