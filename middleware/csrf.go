package middleware

import (
	"net/http"

	"github.com/treinahub/treinahub/core/csrf"
	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
)

// CSRFConfig configures the CSRF verification middleware.
type CSRFConfig[C handler.Context] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// ErrorHandler defines the response for verification failures
	// (default: 403 via response.ErrForbidden).
	ErrorHandler func(ctx C, err error) handler.Response
}

// CSRF creates middleware that verifies the per-session CSRF token on
// state-changing verbs (POST, PUT, PATCH, DELETE). Safe verbs pass through
// untouched. The token is read from the form field or, for AJAX clients,
// the X-CSRF-Token header. Requires the session middleware to have run.
func CSRF[C handler.Context, Data any]() handler.Middleware[C] {
	return CSRFWithConfig[C, Data](CSRFConfig[C]{})
}

// CSRFWithConfig creates a CSRF verification middleware with custom configuration.
func CSRFWithConfig[C handler.Context, Data any](cfg CSRFConfig[C]) handler.Middleware[C] {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			return response.Error(response.ErrForbidden.WithError(err))
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			switch ctx.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				return next(ctx)
			}

			sess, ok := GetSession[Data](ctx)
			if !ok {
				return cfg.ErrorHandler(ctx, csrf.ErrInvalidToken)
			}

			if err := csrf.Verify(sess, submittedToken(ctx.Request())); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			return next(ctx)
		}
	}
}

// submittedToken extracts the token from the form field or header.
func submittedToken(r *http.Request) string {
	if token := r.PostFormValue(csrf.FormField); token != "" {
		return token
	}
	return r.Header.Get(csrf.HeaderName)
}
