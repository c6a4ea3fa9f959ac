package sessiontransport

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/treinahub/treinahub/core/cookie"
	"github.com/treinahub/treinahub/core/handler"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/pkg/clientip"
)

// Cookie provides HTTP cookie-based session transport.
// It stores Session.Token as the cookie value, signed via cookie.Manager.
type Cookie[Data any] struct {
	manager   *session.Manager[Data]
	cookieMgr *cookie.Manager
	name      string
}

// NewCookie creates a new cookie-based session transport.
func NewCookie[Data any](mgr *session.Manager[Data], cookieMgr *cookie.Manager, name string) *Cookie[Data] {
	return &Cookie[Data]{
		manager:   mgr,
		cookieMgr: cookieMgr,
		name:      name,
	}
}

// Load resolves the session from the request cookie. A missing, invalid, or
// expired cookie yields a fresh anonymous session, so Load always returns a
// usable session: graceful degradation instead of failing the request.
func (c *Cookie[Data]) Load(ctx handler.Context) (session.Session[Data], error) {
	token, err := c.cookieMgr.GetSigned(ctx.Request(), c.name)
	if err != nil {
		return c.newAnonymous(ctx)
	}

	sess, err := c.manager.GetByToken(ctx, token)
	if err != nil {
		return c.newAnonymous(ctx)
	}

	return sess, nil
}

// Store persists the session and refreshes the cookie. When the manager
// reports the session deleted (logout), the cookie is cleared instead.
func (c *Cookie[Data]) Store(ctx handler.Context, sess session.Session[Data]) error {
	if err := c.manager.Store(ctx, sess); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			c.cookieMgr.Delete(ctx.ResponseWriter(), c.name)
			return nil
		}
		return err
	}

	return c.save(ctx, sess)
}

// Authenticate rotates the session token, binds it to userID, and persists
// both session and cookie. Returns the authenticated session.
func (c *Cookie[Data]) Authenticate(ctx handler.Context, userID uuid.UUID) (session.Session[Data], error) {
	sess, err := c.Load(ctx)
	if err != nil {
		return session.Session[Data]{}, err
	}

	if err := sess.Authenticate(userID); err != nil {
		return session.Session[Data]{}, err
	}

	if err := c.manager.Store(ctx, sess); err != nil {
		return session.Session[Data]{}, err
	}

	if err := c.save(ctx, sess); err != nil {
		return session.Session[Data]{}, err
	}

	return sess, nil
}

// Logout destroys the current session and replaces it with a fresh
// anonymous one so a post-logout flash can still be delivered.
func (c *Cookie[Data]) Logout(ctx handler.Context) (session.Session[Data], error) {
	sess, err := c.Load(ctx)
	if err != nil {
		return session.Session[Data]{}, err
	}

	sess.Logout()
	if err := c.manager.Store(ctx, sess); err != nil && !errors.Is(err, session.ErrNotAuthenticated) {
		return session.Session[Data]{}, err
	}

	anon, err := c.newAnonymous(ctx)
	if err != nil {
		return session.Session[Data]{}, err
	}

	if err := c.manager.Store(ctx, anon); err != nil {
		return session.Session[Data]{}, err
	}

	if err := c.save(ctx, anon); err != nil {
		return session.Session[Data]{}, err
	}

	return anon, nil
}

func (c *Cookie[Data]) newAnonymous(ctx handler.Context) (session.Session[Data], error) {
	return c.manager.New(session.NewSessionParams{
		IP:        clientip.GetIP(ctx.Request()),
		UserAgent: ctx.Request().Header.Get("User-Agent"),
	})
}

// save writes the signed session cookie with MaxAge matching the
// server-side expiration.
func (c *Cookie[Data]) save(ctx handler.Context, sess session.Session[Data]) error {
	until := time.Until(sess.ExpiresAt)
	if until <= 0 {
		return fmt.Errorf("cannot save expired session (expired %v ago)", -until)
	}

	return c.cookieMgr.SetSigned(ctx.ResponseWriter(), c.name, sess.Token,
		cookie.WithMaxAge(int(until.Seconds())),
	)
}
