package main

import (
	"time"

	"github.com/JaimeStill/lyceum/internal/api"
	"github.com/JaimeStill/lyceum/internal/config"
	"github.com/JaimeStill/lyceum/internal/infrastructure"
	"github.com/JaimeStill/lyceum/pkg/module"
)

const readinessTimeout = 5 * time.Second

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter serves the unauthenticated health probes next to the
// mounted modules.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.Health(infra.Lifecycle, readinessTimeout)
	return router
}
