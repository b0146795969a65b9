package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	return level, nil
}
