package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/lyceum/pkg/pagination"
)

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "LYCEUM_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "LYCEUM_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing and pagination settings.
type APIConfig struct {
	BasePath   string            `toml:"base_path"`
	Pagination pagination.Config `toml:"pagination"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested pagination config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("LYCEUM_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
}

func (c *APIConfig) validate() error {
	if c.BasePath[0] != '/' {
		return fmt.Errorf("base_path must start with /: %q", c.BasePath)
	}
	return nil
}
