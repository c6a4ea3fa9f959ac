package ratelimiter

import "time"

// Config holds rate limiter configuration loaded from the environment.
type Config struct {
	// Enabled toggles rate limiting on abuse-prone endpoints.
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	// MaxAttempts is the number of attempts allowed per window.
	MaxAttempts int `env:"RATE_LIMIT_MAX_ATTEMPTS" envDefault:"5"`
	// DecayMinutes is the window length in minutes.
	DecayMinutes int `env:"RATE_LIMIT_DECAY_MINUTES" envDefault:"15"`
	// UseRedis selects the shared Redis counter store, required when the
	// service runs more than one instance.
	UseRedis bool `env:"RATE_LIMIT_REDIS" envDefault:"false"`
}

// Window returns the decay window as a duration.
func (c Config) Window() time.Duration {
	return time.Duration(c.DecayMinutes) * time.Minute
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.MaxAttempts <= 0 || c.DecayMinutes <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
