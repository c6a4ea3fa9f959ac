package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle including creation, retrieval, and
// expiration. The touchInterval determines how often sessions are
// automatically extended on access, reducing write operations to the store.
type Manager[Data any] struct {
	store         Store[Data]
	ttl           time.Duration
	touchInterval time.Duration
}

// NewManager creates a session manager with the specified store,
// time-to-live duration, and touch interval.
func NewManager[Data any](store Store[Data], ttl, touchInterval time.Duration) *Manager[Data] {
	return &Manager[Data]{
		store:         store,
		ttl:           ttl,
		touchInterval: touchInterval,
	}
}

// New creates a new anonymous session, valid for the manager's TTL.
// The session is not persisted until Store is called.
func (m *Manager[Data]) New(params NewSessionParams) (Session[Data], error) {
	return New[Data](params, m.ttl)
}

// GetByID retrieves a session by ID and validates expiration.
func (m *Manager[Data]) GetByID(ctx context.Context, id uuid.UUID) (Session[Data], error) {
	sess, err := m.store.GetByID(ctx, id)
	if err != nil {
		return Session[Data]{}, err
	}

	if sess.IsExpired() {
		return Session[Data]{}, ErrExpired
	}

	return *sess, nil
}

// GetByToken retrieves a session by token and validates expiration.
func (m *Manager[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	sess, err := m.store.GetByToken(ctx, token)
	if err != nil {
		return Session[Data]{}, err
	}

	if sess.IsExpired() {
		return Session[Data]{}, ErrExpired
	}

	return *sess, nil
}

// Store persists the session based on its state. Deleted sessions are
// removed and ErrNotAuthenticated is returned to signal the transport to
// clear the cookie. Live sessions are touched and saved only when modified.
func (m *Manager[Data]) Store(ctx context.Context, sess Session[Data]) error {
	if sess.IsDeleted() {
		if err := m.store.Delete(ctx, sess.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return errors.Join(ErrDeleteSession, err)
		}
		return ErrNotAuthenticated
	}

	sess.Touch(m.ttl, m.touchInterval)

	if sess.IsModified() {
		if err := m.store.Save(ctx, &sess); err != nil {
			return errors.Join(ErrSaveSession, err)
		}
	}

	return nil
}

// Delete removes a session from the store.
func (m *Manager[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	return m.store.Delete(ctx, id)
}

// CleanupExpired removes all expired sessions from the store.
// Should be called periodically to prevent session table growth.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

// GetTTL returns the session time-to-live duration.
func (m *Manager[Data]) GetTTL() time.Duration {
	return m.ttl
}
