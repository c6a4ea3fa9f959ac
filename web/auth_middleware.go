package web

import (
	"net/url"

	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/response"
	"github.com/treinahub/treinahub/storage"
)

type currentUserKey struct{}

// requireAuth guards admin routes: unauthenticated requests are redirected
// to the login page with the original path preserved for post-login return.
// The resolved user is attached to the context for handlers.
func (a *App) requireAuth() handler.Middleware[*Context] {
	return func(next handler.HandlerFunc[*Context]) handler.HandlerFunc[*Context] {
		return func(ctx *Context) handler.Response {
			sess := ctx.Session()
			if !sess.IsAuthenticated() {
				return response.Redirect(loginURLFor(ctx.Request().URL))
			}

			user, err := a.deps.Users.GetByID(ctx, sess.UserID)
			if err != nil {
				// Deleted account with a live session: treat as logged out.
				return response.Redirect(loginURLFor(ctx.Request().URL))
			}

			ctx.SetValue(currentUserKey{}, user)
			return next(ctx)
		}
	}
}

// csrfFailure handles a rejected state-changing request. An anonymous
// session here usually means the user's session expired between rendering
// the form and submitting it, so send them to login with the original
// target preserved instead of a bare 403.
func (a *App) csrfFailure(ctx *Context, err error) handler.Response {
	if !ctx.Session().IsAuthenticated() {
		return response.Redirect(loginURLFor(ctx.Request().URL))
	}
	return response.Error(response.ErrForbidden.WithError(err))
}

// CurrentUser returns the authenticated admin attached by requireAuth.
func CurrentUser(ctx *Context) (storage.User, bool) {
	user, ok := ctx.Value(currentUserKey{}).(storage.User)
	return user, ok
}

func loginURLFor(u *url.URL) string {
	return "/login?return=" + url.QueryEscape(u.RequestURI())
}

// safeReturnPath accepts only local absolute paths, rejecting redirect
// targets that could send the user off-site after login.
func safeReturnPath(p string) string {
	if p == "" || p[0] != '/' || (len(p) > 1 && p[1] == '/') {
		return "/admin"
	}
	return p
}
