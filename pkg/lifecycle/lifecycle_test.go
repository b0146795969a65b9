package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/lyceum/pkg/lifecycle"
)

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New()

	failures, ok := lc.Ready(context.Background())
	if ok {
		t.Fatal("should not be ready before WaitForStartup")
	}
	if _, found := failures["startup"]; !found {
		t.Errorf("failures = %v, want startup entry", failures)
	}
}

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if _, ok := lc.Ready(context.Background()); !ok {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestReadyReportsFailingChecks(t *testing.T) {
	lc := lifecycle.New()
	boom := errors.New("connection refused")

	lc.RegisterCheck("database", func(context.Context) error { return nil })
	lc.RegisterCheck("cache", func(context.Context) error { return boom })
	lc.WaitForStartup()

	failures, ok := lc.Ready(context.Background())
	if ok {
		t.Fatal("expected not ready")
	}
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", failures)
	}
	if !errors.Is(failures["cache"], boom) {
		t.Errorf("cache failure = %v, want %v", failures["cache"], boom)
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}
