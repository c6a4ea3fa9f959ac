package middleware

import (
	"io"
	"log/slog"
	"time"

	"github.com/treinahub/treinahub/core/handler"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig[C handler.Context] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Logger receives the request records (default: slog with io.Discard)
	Logger *slog.Logger
}

// Logging creates middleware that writes one structured record per request.
func Logging[C handler.Context](logger *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig(LoggingConfig[C]{Logger: logger})
}

// LoggingWithConfig creates a request logging middleware with custom
// configuration. Each record carries method, path, status, duration, client
// IP, and the correlation ID when the RequestID middleware has run.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig[C]) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			resp := next(ctx)

			attrs := []any{
				"method", ctx.Request().Method,
				"path", ctx.Request().URL.Path,
				"duration", time.Since(start).String(),
				"remote", ctx.Request().RemoteAddr,
			}
			if ws, ok := ctx.ResponseWriter().(interface{ Status() int }); ok {
				attrs = append(attrs, "status", ws.Status())
			}
			if id := GetRequestID(ctx); id != "" {
				attrs = append(attrs, "request_id", id)
			}

			cfg.Logger.InfoContext(ctx, "request", attrs...)

			return resp
		}
	}
}
