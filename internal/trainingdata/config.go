package trainingdata

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/lyceum/pkg/formatting"
)

// Config bounds uploads and downloads of training examples.
type Config struct {
	MaxImageSize     string `toml:"max_image_size"`
	FetchConcurrency int    `toml:"fetch_concurrency"`
}

// Env maps config fields to environment variable names.
type Env struct {
	MaxImageSize     string
	FetchConcurrency string
}

// MaxImageSizeBytes is MaxImageSize parsed. Valid after Finalize.
func (c *Config) MaxImageSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxImageSize)
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxImageSize != "" {
		c.MaxImageSize = overlay.MaxImageSize
	}
	if overlay.FetchConcurrency != 0 {
		c.FetchConcurrency = overlay.FetchConcurrency
	}
}

func (c *Config) loadDefaults() {
	if c.MaxImageSize == "" {
		c.MaxImageSize = "8MB"
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 8
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxImageSize != "" {
		if v := os.Getenv(env.MaxImageSize); v != "" {
			c.MaxImageSize = v
		}
	}
	if env.FetchConcurrency != "" {
		if v := os.Getenv(env.FetchConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.FetchConcurrency = n
			}
		}
	}
}

func (c *Config) validate() error {
	n, err := formatting.ParseBytes(c.MaxImageSize)
	if err != nil {
		return fmt.Errorf("invalid max_image_size: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("max_image_size must be positive")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be positive")
	}
	return nil
}
