package api

import (
	"github.com/JaimeStill/lyceum/internal/config"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/infrastructure"
	"github.com/JaimeStill/lyceum/internal/providers"
	"github.com/JaimeStill/lyceum/internal/tenants"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
	"github.com/JaimeStill/lyceum/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination   pagination.Config
	Tenants      tenants.Config
	Credentials  credentials.Config
	TrainingData trainingdata.Config
	Providers    providers.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Cache:     infra.Cache,
			Verifier:  infra.Verifier,
		},
		Pagination:   cfg.API.Pagination,
		Tenants:      cfg.Tenants,
		Credentials:  cfg.Credentials,
		TrainingData: cfg.TrainingData,
		Providers:    cfg.Providers,
	}
}
