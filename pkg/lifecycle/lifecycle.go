// Package lifecycle coordinates startup, shutdown and readiness of the
// long-lived subsystems behind the service.
package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Check reports whether a dependency can currently serve traffic.
type Check func(ctx context.Context) error

// Coordinator runs startup and shutdown hooks and aggregates readiness checks.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu      sync.RWMutex
	started bool
	checks  map[string]Check
}

// New creates a Coordinator with a cancellable root context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: make(map[string]Check),
	}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently with the other startup hooks.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown runs fn concurrently. Hooks block on <-c.Context().Done()
// before releasing their resources.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// RegisterCheck adds a named readiness check. Registering a name twice
// replaces the earlier check.
func (c *Coordinator) RegisterCheck(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// WaitForStartup blocks until every startup hook has returned.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
}

// Ready runs every registered check and returns the failures keyed by name.
// A coordinator whose startup hooks have not finished is never ready.
func (c *Coordinator) Ready(ctx context.Context) (map[string]error, bool) {
	c.mu.RLock()
	started := c.started
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	failures := make(map[string]error)
	if !started {
		failures["startup"] = fmt.Errorf("startup in progress")
		return failures, false
	}

	sort.Strings(names)
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			failures[name] = err
		}
	}

	return failures, len(failures) == 0
}

// Shutdown cancels the root context and waits up to timeout for the
// shutdown hooks to finish.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
