package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/treinahub/treinahub/core/csrf"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/middleware"
	"github.com/treinahub/treinahub/view"
)

// SessionData is the application-specific session payload.
type SessionData struct {
	// UserName caches the display name so the layout does not hit the
	// database on every request.
	UserName string `json:"user_name,omitempty"`
}

// Session is the application session type.
type Session = session.Session[SessionData]

// Context is the request context for all web handlers.
type Context struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
	values map[any]any
}

func newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{w: w, r: r, params: params}
}

// Deadline returns the time when work done on behalf of this context should be canceled.
func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

// Done returns a channel that's closed when work done on behalf of this context should be canceled.
func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err returns a non-nil error value after Done is closed.
func (c *Context) Err() error {
	return c.r.Context().Err()
}

// Value returns the request-scoped value for key, falling back to the
// request's context.
func (c *Context) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.r.Context().Value(key)
}

// SetValue stores a request-scoped value, visible to later middleware and
// the handler through Value.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Request returns the HTTP request associated with this context.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the HTTP response writer associated with this context.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the value of the URL parameter for the given key.
func (c *Context) Param(key string) string {
	if c.params == nil {
		return ""
	}
	return c.params[key]
}

// Session returns the current session. The session middleware runs on every
// route, so a session is always present.
func (c *Context) Session() Session {
	return middleware.MustGetSession[SessionData](c)
}

// UpdateSession replaces the session in the context; the session middleware
// persists it after the handler returns.
func (c *Context) UpdateSession(sess Session) {
	middleware.SetSession(c, sess)
}

// Flash stores a one-shot message delivered on the next rendered page.
func (c *Context) Flash(category session.FlashCategory, text string) {
	sess := c.Session()
	sess.AddFlash(category, text)
	c.UpdateSession(sess)
}

// FormValue returns the named form field, trimmed of surrounding space.
func (c *Context) FormValue(name string) string {
	return strings.TrimSpace(c.r.PostFormValue(name))
}

// page assembles the layout wrapper for a rendered page: title, the
// session's CSRF token (generated lazily), pending flashes (consumed here,
// at-most-once), and the authenticated user's name for the nav.
func (c *Context) page(title string, content any) view.PageData {
	sess := c.Session()

	token, err := csrf.TokenFor(&sess)
	if err != nil {
		token = ""
	}

	flashes := sess.PopFlashes()
	c.UpdateSession(sess)

	return view.PageData{
		Title:     title,
		CSRFToken: token,
		UserName:  sess.Data.UserName,
		Flashes:   flashes,
		Content:   content,
	}
}
