// Package cache owns the Redis client shared by components that keep
// short-lived state outside PostgreSQL.
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/lyceum/pkg/lifecycle"
)

// System owns the Redis client.
type System interface {
	Client() *redis.Client
	// Key namespaces parts under the configured prefix: "<prefix>:a:b".
	Key(parts ...string) string
	Start(lc *lifecycle.Coordinator) error
}

type cache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// New parses cfg.URL and builds a client. No connection is made until the
// first command.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = cfg.DialTimeoutDuration()

	return NewFromClient(redis.NewClient(opts), cfg.KeyPrefix, logger), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, prefix string, logger *slog.Logger) System {
	return &cache{
		client: client,
		prefix: prefix,
		logger: logger.With("system", "cache"),
	}
}

func (c *cache) Client() *redis.Client {
	return c.client
}

func (c *cache) Key(parts ...string) string {
	key := c.prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func (c *cache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache connection")

	lc.OnStartup(func() {
		if err := c.client.Ping(lc.Context()).Err(); err != nil {
			c.logger.Error("cache ping failed", "error", err)
			return
		}
		c.logger.Info("cache connection established")
	})

	lc.RegisterCheck("cache", func(ctx context.Context) error {
		return c.client.Ping(ctx).Err()
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}
		c.logger.Info("cache connection closed")
	})

	return nil
}
