package cache_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/JaimeStill/lyceum/pkg/cache"
	"github.com/JaimeStill/lyceum/pkg/lifecycle"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         cache.Config
		wantEnabled bool
		wantErr     string
	}{
		{"disabled", cache.Config{}, false, ""},
		{"enabled", cache.Config{URL: "redis://localhost:6379/0"}, true, ""},
		{"bad url", cache.Config{URL: "http://nope"}, true, "invalid url"},
		{"bad timeout", cache.Config{DialTimeout: "soon"}, false, "invalid dial_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("finalize: %v", err)
			}
			if tt.cfg.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tt.cfg.Enabled(), tt.wantEnabled)
			}
			if tt.cfg.KeyPrefix != "lyceum" {
				t.Errorf("key_prefix = %q", tt.cfg.KeyPrefix)
			}
		})
	}
}

func TestStartRegistersReadiness(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := cache.Config{URL: "redis://" + srv.Addr()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sys, err := cache.New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if got := sys.Key("exhausted", "abc"); got != "lyceum:exhausted:abc" {
		t.Errorf("Key() = %q", got)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	lc.WaitForStartup()

	if failures, ok := lc.Ready(context.Background()); !ok {
		t.Errorf("not ready: %v", failures)
	}

	srv.Close()
	if _, ok := lc.Ready(context.Background()); ok {
		t.Error("expected not ready after redis stopped")
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
