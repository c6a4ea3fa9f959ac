package cookie

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSecret is returned when the manager is created without any signing secret.
	ErrNoSecret = errors.New("at least one secret is required")
	// ErrSecretTooShort is returned when a signing secret is shorter than 32 bytes.
	ErrSecretTooShort = errors.New("secret too short")
	// ErrCookieNotFound is returned when the named cookie is absent from the request.
	ErrCookieNotFound = errors.New("cookie not found")
	// ErrInvalidFormat is returned when a signed cookie value cannot be decoded.
	ErrInvalidFormat = errors.New("invalid cookie format")
	// ErrInvalidSignature is returned when no secret verifies the cookie signature.
	ErrInvalidSignature = errors.New("invalid cookie signature")
)

// ErrCookieTooLarge is returned when a serialized cookie exceeds the size limit.
type ErrCookieTooLarge struct {
	Name string
	Size int
	Max  int
}

func (e ErrCookieTooLarge) Error() string {
	return fmt.Sprintf("cookie %q size %d exceeds maximum %d", e.Name, e.Size, e.Max)
}
