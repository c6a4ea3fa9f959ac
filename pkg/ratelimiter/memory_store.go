package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// counter tracks attempts within one fixed window.
type counter struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

func (c *counter) expired(now time.Time) bool {
	return now.After(c.windowStart.Add(c.window))
}

// MemoryStore implements Store using in-process storage.
// Counters are shared only within a single instance; multi-instance
// deployments need the Redis store.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter

	cleanupInterval time.Duration
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often stale counters are removed.
// Set to 0 to disable automatic cleanup.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// NewMemoryStore creates a new in-memory counter store.
// Call Start to begin background cleanup of expired windows.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		counters:        make(map[string]*counter),
		cleanupInterval: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Increment bumps the counter for key under the store lock, resetting the
// window first when it has fully elapsed.
func (ms *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	c, ok := ms.counters[key]
	if !ok || c.expired(now) {
		c = &counter{windowStart: now, window: window}
		ms.counters[key] = c
	}

	c.count++
	return c.count, c.windowStart.Add(c.window), nil
}

func (ms *MemoryStore) Reset(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.counters, key)
	return nil
}

// Start runs periodic cleanup of expired counters until the context is
// canceled. Blocking; run it in a goroutine or errgroup.
func (ms *MemoryStore) Start(ctx context.Context) error {
	if ms.cleanupInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ms.removeExpired()
		}
	}
}

// removeExpired drops counters whose window has fully elapsed to keep the
// map from growing without bound.
func (ms *MemoryStore) removeExpired() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for key, c := range ms.counters {
		if c.expired(now) {
			delete(ms.counters, key)
		}
	}
}
