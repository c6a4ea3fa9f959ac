package middleware

import (
	"github.com/google/uuid"

	"github.com/treinahub/treinahub/core/handler"
)

type requestIDKey struct{}

// RequestIDHeader is the canonical header for request correlation IDs.
const RequestIDHeader = "X-Request-ID"

// RequestID creates middleware that ensures every request has a correlation
// ID, reusing the inbound header when a proxy already assigned one. The ID
// is stored in the context and echoed on the response.
func RequestID[C handler.Context]() handler.Middleware[C] {
	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			id := ctx.Request().Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			ctx.SetValue(requestIDKey{}, id)
			ctx.ResponseWriter().Header().Set(RequestIDHeader, id)

			return next(ctx)
		}
	}
}

// GetRequestID retrieves the request ID from the context, empty if the
// middleware has not run.
func GetRequestID(ctx handler.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
