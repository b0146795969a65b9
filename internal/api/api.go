// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/lyceum/internal/config"
	"github.com/JaimeStill/lyceum/internal/infrastructure"
	"github.com/JaimeStill/lyceum/pkg/auth"
	"github.com/JaimeStill/lyceum/pkg/middleware"
	"github.com/JaimeStill/lyceum/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every route requires a verified bearer token.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Middleware(runtime.Verifier, runtime.Logger))

	return m, nil
}
