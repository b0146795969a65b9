package auth

import (
	"fmt"
	"os"
	"time"
)

// Config selects how bearer tokens are verified. With Secret set, tokens
// are HS256 JWTs signed with it; otherwise they are OIDC ID tokens from
// Issuer verified against JWKSURL.
type Config struct {
	Issuer   string `toml:"issuer"`
	Audience string `toml:"audience"`
	JWKSURL  string `toml:"jwks_url"`
	Secret   string `toml:"secret"`
	Leeway   string `toml:"leeway"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Issuer   string
	Audience string
	JWKSURL  string
	Secret   string
	Leeway   string
}

// LeewayDuration is the clock skew tolerated when checking expiry.
func (c *Config) LeewayDuration() time.Duration {
	d, _ := time.ParseDuration(c.Leeway)
	return d
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
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.Audience != "" {
		c.Audience = overlay.Audience
	}
	if overlay.JWKSURL != "" {
		c.JWKSURL = overlay.JWKSURL
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Leeway != "" {
		c.Leeway = overlay.Leeway
	}
}

func (c *Config) loadDefaults() {
	if c.Leeway == "" {
		c.Leeway = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, pair := range []struct {
		name   string
		target *string
	}{
		{env.Issuer, &c.Issuer},
		{env.Audience, &c.Audience},
		{env.JWKSURL, &c.JWKSURL},
		{env.Secret, &c.Secret},
		{env.Leeway, &c.Leeway},
	} {
		if pair.name == "" {
			continue
		}
		if v := os.Getenv(pair.name); v != "" {
			*pair.target = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Leeway); err != nil {
		return fmt.Errorf("invalid leeway: %w", err)
	}
	if c.Secret != "" {
		if len(c.Secret) < 32 {
			return fmt.Errorf("secret must be at least 32 bytes")
		}
		return nil
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer or secret required")
	}
	if c.Audience == "" {
		return fmt.Errorf("audience required with issuer")
	}
	return nil
}
