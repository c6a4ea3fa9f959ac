package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store using in-process storage.
// Suitable for single-instance deployments and tests; sessions are lost
// on restart. Safe for concurrent use.
type MemoryStore[Data any] struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Session[Data]
	byToken map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-process session store.
func NewMemoryStore[Data any]() *MemoryStore[Data] {
	return &MemoryStore[Data]{
		byID:    make(map[uuid.UUID]*Session[Data]),
		byToken: make(map[string]uuid.UUID),
	}
}

func (ms *MemoryStore[Data]) GetByID(ctx context.Context, id uuid.UUID) (*Session[Data], error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	sess, ok := ms.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (ms *MemoryStore[Data]) GetByToken(ctx context.Context, token string) (*Session[Data], error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	id, ok := ms.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	sess, ok := ms.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

// Save stores the session, replacing any previous version. The token index
// is updated under the same lock so concurrent saves from double-submitted
// forms cannot leave a stale token behind.
func (ms *MemoryStore[Data]) Save(ctx context.Context, sess *Session[Data]) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if old, ok := ms.byID[sess.ID]; ok && old.Token != sess.Token {
		delete(ms.byToken, old.Token)
	}

	cp := *sess
	ms.byID[sess.ID] = &cp
	ms.byToken[sess.Token] = sess.ID
	return nil
}

func (ms *MemoryStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	sess, ok := ms.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(ms.byToken, sess.Token)
	delete(ms.byID, id)
	return nil
}

func (ms *MemoryStore[Data]) DeleteExpired(ctx context.Context) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var removed int64
	for id, sess := range ms.byID {
		if now.After(sess.ExpiresAt) {
			delete(ms.byToken, sess.Token)
			delete(ms.byID, id)
			removed++
		}
	}
	return removed, nil
}
