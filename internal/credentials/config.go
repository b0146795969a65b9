package credentials

import (
	"fmt"
	"os"
	"time"
)

// Config controls how long an account stays marked out of capacity.
type Config struct {
	ExhaustionTTL string `toml:"exhaustion_ttl"`
}

// Env maps config fields to environment variable names.
type Env struct {
	ExhaustionTTL string
}

// ExhaustionTTLDuration returns ExhaustionTTL as a time.Duration.
func (c *Config) ExhaustionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.ExhaustionTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.ExhaustionTTL == "" {
		c.ExhaustionTTL = "1h"
	}
	if env != nil && env.ExhaustionTTL != "" {
		if v := os.Getenv(env.ExhaustionTTL); v != "" {
			c.ExhaustionTTL = v
		}
	}

	d, err := time.ParseDuration(c.ExhaustionTTL)
	if err != nil {
		return fmt.Errorf("invalid exhaustion_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("exhaustion_ttl must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ExhaustionTTL != "" {
		c.ExhaustionTTL = overlay.ExhaustionTTL
	}
}
