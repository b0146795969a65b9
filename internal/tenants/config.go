package tenants

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the policy applied to classes with no stored tenant row.
type Config struct {
	MaxTextModels  int `toml:"max_text_models"`
	MaxImageModels int `toml:"max_image_models"`
}

// Env maps config fields to environment variable names.
type Env struct {
	MaxTextModels  string
	MaxImageModels string
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
	if overlay.MaxTextModels != 0 {
		c.MaxTextModels = overlay.MaxTextModels
	}
	if overlay.MaxImageModels != 0 {
		c.MaxImageModels = overlay.MaxImageModels
	}
}

// Default is the policy for classid under this config.
func (c *Config) Default(classID string) Tenant {
	return Tenant{
		ID:             classID,
		MaxTextModels:  c.MaxTextModels,
		MaxImageModels: c.MaxImageModels,
	}
}

func (c *Config) loadDefaults() {
	if c.MaxTextModels == 0 {
		c.MaxTextModels = 3
	}
	if c.MaxImageModels == 0 {
		c.MaxImageModels = 3
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxTextModels != "" {
		if v := os.Getenv(env.MaxTextModels); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxTextModels = n
			}
		}
	}
	if env.MaxImageModels != "" {
		if v := os.Getenv(env.MaxImageModels); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxImageModels = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.MaxTextModels < 0 || c.MaxImageModels < 0 {
		return fmt.Errorf("model limits cannot be negative")
	}
	return nil
}
