package ratelimiter

import "errors"

var (
	// ErrInvalidConfig is returned for non-positive attempt or window settings.
	ErrInvalidConfig = errors.New("invalid rate limiter config")
	// ErrNilStore is returned when a limiter is created without a store.
	ErrNilStore = errors.New("rate limiter store is required")
)
