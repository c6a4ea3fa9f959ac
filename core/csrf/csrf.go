package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/treinahub/treinahub/core/session"
)

// FormField is the hidden form field carrying the token.
const FormField = "_token"

// HeaderName is the request header equivalent, used by AJAX clients that
// read the token from the page's meta tag.
const HeaderName = "X-CSRF-Token"

var (
	// ErrInvalidToken is returned when the submitted token is absent,
	// malformed, or does not match the session's token.
	ErrInvalidToken = errors.New("invalid csrf token")
	// ErrTokenGeneration is returned when random token generation fails.
	ErrTokenGeneration = errors.New("failed to generate csrf token")
)

// TokenFor returns the session's CSRF token, generating one lazily if the
// session has none. The token is deliberately NOT rotated per request:
// rotation-on-use would break forms open in multiple tabs. It rotates only
// on login/logout, when the session clears it.
func TokenFor[Data any](sess *session.Session[Data]) (string, error) {
	if sess.CSRFToken != "" {
		return sess.CSRFToken, nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}

	token := base64.RawURLEncoding.EncodeToString(b)
	sess.SetCSRFToken(token)
	return token, nil
}

// Verify checks a submitted token against the session's token using a
// constant-time comparison. It fails when the session has no token yet,
// since a token is only handed out with a rendered form.
func Verify[Data any](sess session.Session[Data], submitted string) error {
	if sess.CSRFToken == "" || submitted == "" {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(submitted)) != 1 {
		return ErrInvalidToken
	}
	return nil
}
