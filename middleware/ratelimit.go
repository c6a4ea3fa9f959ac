package middleware

import (
	"fmt"
	"strconv"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/pkg/clientip"
	"github.com/treinahub/treinahub/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig[C handler.Context] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Limiter performs the attempt accounting (required).
	Limiter *ratelimiter.Limiter
	// KeyFunc derives the counter key from the request
	// (default: client IP). Use an action prefix to keep counters for
	// different endpoints independent, e.g. "login:" + ip.
	KeyFunc func(ctx C) string
	// ErrorHandler defines the response when the limit is exceeded
	// (default: 429 via response.ErrTooManyRequests).
	ErrorHandler func(ctx C, result *ratelimiter.Result) handler.Response
}

// RateLimit creates middleware that throttles requests per client IP.
func RateLimit[C handler.Context](limiter *ratelimiter.Limiter) handler.Middleware[C] {
	return RateLimitWithConfig(RateLimitConfig[C]{Limiter: limiter})
}

// RateLimitWithConfig creates a rate limiting middleware with custom
// configuration. Responses carry X-RateLimit-Limit and X-RateLimit-Remaining
// headers; rejected requests additionally get Retry-After in seconds.
func RateLimitWithConfig[C handler.Context](cfg RateLimitConfig[C]) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(ctx C) string {
			return clientip.GetIP(ctx.Request())
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, result *ratelimiter.Result) handler.Response {
			return response.Error(response.ErrTooManyRequests.WithMessage(
				fmt.Sprintf("Too many attempts. Try again in %d seconds.", int(result.RetryAfter().Seconds())),
			))
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			result, err := cfg.Limiter.Attempt(ctx, cfg.KeyFunc(ctx))
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return response.Error(ctxErr)
				}
				// Fail open: a broken counter store must not take the
				// whole endpoint down with it.
				return next(ctx)
			}

			h := ctx.ResponseWriter().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining()))

			if !result.Allowed() {
				h.Set("Retry-After", strconv.Itoa(int(result.RetryAfter().Seconds())))
				return cfg.ErrorHandler(ctx, result)
			}

			return next(ctx)
		}
	}
}
