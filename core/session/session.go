package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// FlashCategory classifies a one-shot flash message.
type FlashCategory string

const (
	FlashSuccess FlashCategory = "success"
	FlashError   FlashCategory = "error"
	FlashWarning FlashCategory = "warning"
	FlashInfo    FlashCategory = "info"
)

// Flash is a notification stored for exactly one subsequent read,
// typically rendered as a toast after a redirect.
type Flash struct {
	Category FlashCategory `json:"category"`
	Text     string        `json:"text"`
}

// Session represents a browser session with generic data storage.
// The Data type parameter allows custom session data structures
// specific to the application.
type Session[Data any] struct {
	// ID is the stable unique session identifier that never changes
	// during the session lifecycle.
	ID uuid.UUID `json:"id"`

	// Token is the cryptographically secure session token
	// (32 bytes base64url) used as the cookie value.
	Token string `json:"token"`

	// UserID identifies the authenticated user (uuid.Nil for anonymous sessions).
	UserID uuid.UUID `json:"user_id"`

	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	// CSRFToken is the per-session CSRF token. Generated lazily by the
	// csrf package and rotated on login/logout, never per request.
	CSRFToken string `json:"csrf_token"`

	// Flashes are pending one-shot messages, consumed on read.
	Flashes []Flash `json:"flashes,omitempty"`

	// Data holds custom application-specific session information.
	Data Data `json:"data"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeletedAt time.Time `json:"deleted_at,omitzero"`

	// isModified tracks if the session needs saving
	isModified bool
}

// NewSessionParams contains parameters for creating a new session.
type NewSessionParams struct {
	IP        string
	UserAgent string
}

// New creates a new anonymous session with generated token and ID.
// The session is marked as modified and ready to be saved.
func New[Data any](params NewSessionParams, ttl time.Duration) (Session[Data], error) {
	token, err := generateToken()
	if err != nil {
		return Session[Data]{}, errors.Join(ErrTokenGeneration, err)
	}

	now := time.Now()
	return Session[Data]{
		ID:         uuid.New(),
		Token:      token,
		UserID:     uuid.Nil,
		IP:         params.IP,
		UserAgent:  params.UserAgent,
		Data:       *new(Data),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
		isModified: true,
	}, nil
}

// Authenticate marks the session as belonging to userID.
// Rotates the session token and clears the CSRF token (a fresh one is
// generated lazily), preserving the session ID.
func (s *Session[Data]) Authenticate(userID uuid.UUID) error {
	if err := s.rotateToken(); err != nil {
		return err
	}
	s.UserID = userID
	s.CSRFToken = ""
	s.UpdatedAt = time.Now()
	s.isModified = true
	return nil
}

// Logout marks the session for deletion by setting DeletedAt.
// The manager removes it from the store on the next Store call.
func (s *Session[Data]) Logout() {
	s.DeletedAt = time.Now()
	s.isModified = true
}

// SetData updates the session's custom data.
func (s *Session[Data]) SetData(data Data) {
	s.Data = data
	s.UpdatedAt = time.Now()
	s.isModified = true
}

// SetCSRFToken records the session's CSRF token.
func (s *Session[Data]) SetCSRFToken(token string) {
	s.CSRFToken = token
	s.isModified = true
}

// AddFlash stores a one-shot message for the next rendered response.
func (s *Session[Data]) AddFlash(category FlashCategory, text string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Text: text})
	s.isModified = true
}

// HasFlash reports whether a pending flash exists for the category
// without consuming it.
func (s *Session[Data]) HasFlash(category FlashCategory) bool {
	for _, f := range s.Flashes {
		if f.Category == category {
			return true
		}
	}
	return false
}

// PopFlash consumes and returns the first pending flash for the category.
// Reading removes it, so delivery is at-most-once.
func (s *Session[Data]) PopFlash(category FlashCategory) (Flash, bool) {
	for i, f := range s.Flashes {
		if f.Category == category {
			s.Flashes = append(s.Flashes[:i], s.Flashes[i+1:]...)
			s.isModified = true
			return f, true
		}
	}
	return Flash{}, false
}

// PopFlashes consumes and returns all pending flashes in insertion order.
func (s *Session[Data]) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.isModified = true
	return out
}

// Touch extends the session expiration if the touch interval has elapsed.
// This reduces write operations by only updating when sufficient time has passed.
func (s *Session[Data]) Touch(ttl, touchInterval time.Duration) {
	if time.Since(s.UpdatedAt) >= touchInterval {
		s.ExpiresAt = time.Now().Add(ttl)
		s.UpdatedAt = time.Now()
		s.isModified = true
	}
}

// IsAuthenticated returns true if the session has a valid user ID.
func (s Session[Data]) IsAuthenticated() bool {
	return s.UserID != uuid.Nil && s.Token != ""
}

// IsDeleted returns true if the session is marked for deletion.
func (s Session[Data]) IsDeleted() bool {
	return !s.DeletedAt.IsZero()
}

// IsModified returns true if the session has been modified and needs saving.
func (s Session[Data]) IsModified() bool {
	return s.isModified
}

// IsExpired returns true if the session has expired.
func (s Session[Data]) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// rotateToken generates a new token while preserving the session ID.
func (s *Session[Data]) rotateToken() error {
	newToken, err := generateToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}
	s.Token = newToken
	s.isModified = true
	return nil
}

// generateToken creates a cryptographically secure random token using
// 32 bytes (256 bits) encoded as base64 URL-safe string without padding.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
