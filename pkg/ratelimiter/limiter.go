package ratelimiter

import (
	"context"
	"time"
)

// Store persists attempt counters. Implementations must increment
// atomically: concurrent attempts for the same key (double-submitted
// forms) must never lose an update.
type Store interface {
	// Increment bumps the counter for key, first resetting it when its
	// window has elapsed. It returns the new count and the moment the
	// current window expires.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}

// Result describes the outcome of a single attempt.
type Result struct {
	// Limit is the configured maximum attempts per window.
	Limit int
	// Count is the attempt count within the current window, including
	// this attempt. Never negative.
	Count int
	// ResetAt is when the current window expires and the counter resets.
	ResetAt time.Time
}

// Allowed reports whether this attempt is within the limit.
func (r *Result) Allowed() bool {
	return r.Count <= r.Limit
}

// Remaining returns how many attempts are left in the current window.
func (r *Result) Remaining() int {
	if n := r.Limit - r.Count; n > 0 {
		return n
	}
	return 0
}

// RetryAfter returns the remaining lockout duration, zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	if d := time.Until(r.ResetAt); d > 0 {
		return d
	}
	return 0
}

// Limiter implements fixed-window rate limiting: up to MaxAttempts per key
// within each decay window. Counters are keyed per identity+action (for
// example "login:203.0.113.7") so one abusive client cannot lock out others.
type Limiter struct {
	store  Store
	config Config
}

// New creates a limiter with the given store and configuration.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: cfg}, nil
}

// Attempt records one attempt for key and reports whether it is allowed.
// The counter resets strictly after the decay window elapses.
func (l *Limiter) Attempt(ctx context.Context, key string) (*Result, error) {
	count, resetAt, err := l.store.Increment(ctx, key, l.config.Window())
	if err != nil {
		return nil, err
	}

	return &Result{
		Limit:   l.config.MaxAttempts,
		Count:   count,
		ResetAt: resetAt,
	}, nil
}

// Reset clears the counter for key (administrative override, or after a
// successful login to forgive prior failures).
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
