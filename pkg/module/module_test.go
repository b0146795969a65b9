package module_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/lyceum/pkg/module"
)

type probe struct {
	failures map[string]error
}

func (p probe) Ready(context.Context) (map[string]error, bool) {
	return p.failures, len(p.failures) == 0
}

func TestNewPanicsOnInvalidPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestRouterStripsPrefix(t *testing.T) {
	inner := http.NewServeMux()
	inner.HandleFunc("GET /classes/{classid}/tenant", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.PathValue("classid")))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", inner))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/classes/c42/tenant/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "c42" {
		t.Errorf("body = %q, want c42", rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		probe    probe
		wantCode int
	}{
		{"healthz", "/healthz", probe{failures: map[string]error{"database": errors.New("down")}}, http.StatusOK},
		{"ready", "/readyz", probe{}, http.StatusOK},
		{"not ready", "/readyz", probe{failures: map[string]error{"cache": errors.New("refused")}}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := module.NewRouter()
			router.Health(tt.probe, time.Second)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}

			if tt.wantCode == http.StatusServiceUnavailable {
				var body struct {
					Checks map[string]string `json:"checks"`
				}
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.Checks["cache"] != "refused" {
					t.Errorf("checks = %v", body.Checks)
				}
			}
		})
	}
}
