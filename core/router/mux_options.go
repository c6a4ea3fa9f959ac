package router

import (
	"log/slog"
	"net/http"

	"github.com/treinahub/treinahub/core/handler"
)

// Option configures a router during construction.
type Option[C handler.Context] func(*mux[C])

// WithContextFactory sets the factory used to build a request context
// from the response writer, request, and extracted path parameters.
// A factory is required: the router has no default context type.
func WithContextFactory[C handler.Context](factory func(http.ResponseWriter, *http.Request, map[string]string) C) Option[C] {
	return func(m *mux[C]) {
		m.newContext = factory
	}
}

// WithErrorHandler sets a custom error handler for dispatch and render errors.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithLogger sets the logger used for panics recovered after the
// response was already written.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if logger != nil {
			m.logger = logger
		}
	}
}
