package session

import "time"

// Config holds session manager configuration loaded from the environment.
type Config struct {
	// LifetimeMinutes is the session idle timeout in minutes.
	LifetimeMinutes int `env:"SESSION_LIFETIME" envDefault:"120"`
	// TouchInterval is the minimum time between activity updates
	// (0 = touch on every request).
	TouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"`
	// Store selects the backing store: "memory" or "redis".
	Store string `env:"SESSION_STORE" envDefault:"memory"`
}

// TTL returns the configured lifetime as a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.LifetimeMinutes) * time.Minute
}

// NewFromConfig creates a session manager from environment configuration
// using the provided store.
func NewFromConfig[Data any](cfg Config, store Store[Data]) *Manager[Data] {
	return NewManager(store, cfg.TTL(), cfg.TouchInterval)
}
