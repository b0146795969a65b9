package tenants_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/lyceum/internal/tenants"
	"github.com/JaimeStill/lyceum/pkg/auth"
)

type mockSystem struct {
	findFn   func(ctx context.Context, classID string) (*tenants.Tenant, error)
	updateFn func(ctx context.Context, classID string, cmd tenants.UpdateCommand) (*tenants.Tenant, error)
}

func (m *mockSystem) Handler() *tenants.Handler {
	return tenants.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Find(ctx context.Context, classID string) (*tenants.Tenant, error) {
	return m.findFn(ctx, classID)
}

func (m *mockSystem) Update(ctx context.Context, classID string, cmd tenants.UpdateCommand) (*tenants.Tenant, error) {
	return m.updateFn(ctx, classID, cmd)
}

func setupMux(h *tenants.Handler, id *auth.Identity) http.Handler {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func TestHandlerFind(t *testing.T) {
	defaults := tenants.Config{MaxTextModels: 3, MaxImageModels: 3}
	sys := &mockSystem{
		findFn: func(_ context.Context, classID string) (*tenants.Tenant, error) {
			t := defaults.Default(classID)
			return &t, nil
		},
	}

	tests := []struct {
		name     string
		id       *auth.Identity
		wantCode int
	}{
		{"supervisor", &auth.Identity{UserID: "t", Tenant: "class-1", Role: auth.RoleSupervisor}, http.StatusOK},
		{"student", &auth.Identity{UserID: "s", Tenant: "class-1", Role: auth.RoleStudent}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			setupMux(sys.Handler(), tt.id).ServeHTTP(rec, httptest.NewRequest("GET", "/classes/class-1/tenant", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Code == http.StatusOK {
				var got tenants.Tenant
				json.NewDecoder(rec.Body).Decode(&got)
				if got.ID != "class-1" || got.MaxTextModels != 3 {
					t.Errorf("tenant = %+v", got)
				}
			}
		})
	}
}

func TestHandlerUpdateManaged(t *testing.T) {
	sys := &mockSystem{
		updateFn: func(_ context.Context, classID string, cmd tenants.UpdateCommand) (*tenants.Tenant, error) {
			if classID == "managed" {
				return nil, tenants.ErrManaged
			}
			return &tenants.Tenant{ID: classID, MaxTextModels: cmd.MaxTextModels, MaxImageModels: cmd.MaxImageModels}, nil
		},
	}

	tests := []struct {
		classID  string
		wantCode int
	}{
		{"class-1", http.StatusOK},
		{"managed", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.classID, func(t *testing.T) {
			id := &auth.Identity{UserID: "t", Tenant: tt.classID, Role: auth.RoleSupervisor}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("PUT", "/classes/"+tt.classID+"/tenant", strings.NewReader(`{"maxTextModels":5,"maxImageModels":1}`))
			setupMux(sys.Handler(), id).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}
