// Package session provides cookie-backed server-side sessions with generic
// application data, one-shot flash messages, and pluggable stores.
//
// A session is identified by an opaque random token carried in a signed
// cookie. Tokens rotate on login and sessions are destroyed on logout.
// Expiry is an idle timeout: each request past the touch interval extends
// the session by the configured lifetime.
package session
