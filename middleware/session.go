package middleware

import (
	"io"
	"log/slog"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/core/session"
)

type sessionKey struct{}

// SessionConfig configures the session middleware.
type SessionConfig[C handler.Context, Data any] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Transport implements Load and Store methods for session management
	Transport interface {
		Load(handler.Context) (session.Session[Data], error)
		Store(handler.Context, session.Session[Data]) error
	}
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
	// RequireAuth enforces an authenticated user (UserID != uuid.Nil);
	// unauthenticated requests get the ErrorHandler response.
	RequireAuth bool
	// RequireGuest enforces an unauthenticated session, e.g. on the login page.
	RequireGuest bool
	// ErrorHandler defines the response for auth failures
	// (default: response.Error(response.ErrUnauthorized)).
	ErrorHandler func(ctx C, err error) handler.Response
}

// Session creates middleware that loads the session from the transport,
// stores it in the request context, and persists it after the request.
func Session[C handler.Context, Data any](
	transport interface {
		Load(handler.Context) (session.Session[Data], error)
		Store(handler.Context, session.Session[Data]) error
	},
) handler.Middleware[C] {
	return SessionWithConfig[C, Data](SessionConfig[C, Data]{
		Transport: transport,
	})
}

// SessionWithConfig creates a session middleware with custom configuration.
//
// The middleware loads the session (degrading to an empty session on load
// errors), enforces RequireAuth/RequireGuest, stores the session in the
// context for handlers, and persists whatever session is in the context
// once the handler returns, so handler mutations (flash messages, login,
// logout) survive into the next request.
func SessionWithConfig[C handler.Context, Data any](cfg SessionConfig[C, Data]) handler.Middleware[C] {
	if cfg.Transport == nil {
		panic("session middleware: transport is required")
	}

	if cfg.RequireAuth && cfg.RequireGuest {
		panic("session middleware: RequireAuth and RequireGuest cannot both be true")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			return response.Error(response.ErrUnauthorized)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			sess, err := cfg.Transport.Load(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return response.Error(ctxErr)
				}
				cfg.Logger.ErrorContext(ctx, "session middleware: failed to load session", "error", err)
				// Allow graceful degradation instead of failing the request
				sess = session.Session[Data]{}
			}

			if cfg.RequireAuth && !sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrUnauthorized)
			}

			if cfg.RequireGuest && sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrForbidden)
			}

			ctx.SetValue(sessionKey{}, sess)

			resp := next(ctx)

			// Handlers may have replaced the session (login/logout)
			currentSess, ok := GetSession[Data](ctx)
			if !ok {
				return resp
			}

			if err := cfg.Transport.Store(ctx, currentSess); err != nil {
				cfg.Logger.ErrorContext(ctx, "session store failed", "error", err)
				return cfg.ErrorHandler(ctx, err)
			}

			return resp
		}
	}
}

// GetSession retrieves the session from the request context.
func GetSession[Data any](ctx handler.Context) (session.Session[Data], bool) {
	if ctx == nil {
		return session.Session[Data]{}, false
	}

	if sess, ok := ctx.Value(sessionKey{}).(session.Session[Data]); ok {
		return sess, true
	}

	return session.Session[Data]{}, false
}

// MustGetSession retrieves the session or panics if absent.
// Use when session middleware is guaranteed to have run.
func MustGetSession[Data any](ctx handler.Context) session.Session[Data] {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// SetSession updates the session in the request context. The session
// middleware persists whatever session is present once the handler returns.
func SetSession[Data any](ctx handler.Context, sess session.Session[Data]) {
	ctx.SetValue(sessionKey{}, sess)
}
