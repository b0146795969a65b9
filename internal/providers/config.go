package providers

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// ServiceConfig configures a Watson service. Accounts come from the class's
// stored credentials.
type ServiceConfig struct {
	Version  string `toml:"version"`
	Timeout  string `toml:"timeout"`
	ModelTTL string `toml:"model_ttl"`
}

// NumbersConfig configures the numbers service and its account.
type NumbersConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Timeout  string `toml:"timeout"`
}

// Config holds the training provider settings.
type Config struct {
	Assistant         ServiceConfig `toml:"assistant"`
	VisualRecognition ServiceConfig `toml:"visual_recognition"`
	Numbers           NumbersConfig `toml:"numbers"`
	StatusConcurrency int           `toml:"status_concurrency"`
}

// Env maps config fields to environment variable names.
type Env struct {
	NumbersURL        string
	NumbersUsername   string
	NumbersPassword   string
	StatusConcurrency string
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
	c.Assistant.merge(&overlay.Assistant)
	c.VisualRecognition.merge(&overlay.VisualRecognition)

	if overlay.Numbers.URL != "" {
		c.Numbers.URL = overlay.Numbers.URL
	}
	if overlay.Numbers.Username != "" {
		c.Numbers.Username = overlay.Numbers.Username
	}
	if overlay.Numbers.Password != "" {
		c.Numbers.Password = overlay.Numbers.Password
	}
	if overlay.Numbers.Timeout != "" {
		c.Numbers.Timeout = overlay.Numbers.Timeout
	}
	if overlay.StatusConcurrency != 0 {
		c.StatusConcurrency = overlay.StatusConcurrency
	}
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ServiceConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// ModelTTLDuration returns ModelTTL as a time.Duration.
func (c *ServiceConfig) ModelTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.ModelTTL)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *NumbersConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *ServiceConfig) merge(overlay *ServiceConfig) {
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.ModelTTL != "" {
		c.ModelTTL = overlay.ModelTTL
	}
}

func (c *ServiceConfig) defaults(version string) {
	if c.Version == "" {
		c.Version = version
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.ModelTTL == "" {
		c.ModelTTL = "24h"
	}
}

func (c *ServiceConfig) validate() error {
	if c.Version == "" {
		return fmt.Errorf("version required")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if d, err := time.ParseDuration(c.ModelTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid model_ttl: %q", c.ModelTTL)
	}
	return nil
}

func (c *Config) loadDefaults() {
	c.Assistant.defaults("2018-09-20")
	c.VisualRecognition.defaults("2018-03-19")

	if c.Numbers.URL == "" {
		c.Numbers.URL = "http://localhost:8000"
	}
	if c.Numbers.Timeout == "" {
		c.Numbers.Timeout = "30s"
	}
	if c.StatusConcurrency <= 0 {
		c.StatusConcurrency = 4
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.NumbersURL != "" {
		if v := os.Getenv(env.NumbersURL); v != "" {
			c.Numbers.URL = v
		}
	}
	if env.NumbersUsername != "" {
		if v := os.Getenv(env.NumbersUsername); v != "" {
			c.Numbers.Username = v
		}
	}
	if env.NumbersPassword != "" {
		if v := os.Getenv(env.NumbersPassword); v != "" {
			c.Numbers.Password = v
		}
	}
	if env.StatusConcurrency != "" {
		if v := os.Getenv(env.StatusConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.StatusConcurrency = n
			}
		}
	}
}

func (c *Config) validate() error {
	if err := c.Assistant.validate(); err != nil {
		return fmt.Errorf("assistant: %w", err)
	}
	if err := c.VisualRecognition.validate(); err != nil {
		return fmt.Errorf("visual_recognition: %w", err)
	}

	u, err := url.Parse(c.Numbers.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("numbers: invalid url %q", c.Numbers.URL)
	}
	if d, err := time.ParseDuration(c.Numbers.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("numbers: invalid timeout: %q", c.Numbers.Timeout)
	}
	if c.StatusConcurrency < 1 {
		return fmt.Errorf("status_concurrency must be positive")
	}
	return nil
}
