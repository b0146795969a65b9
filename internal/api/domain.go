package api

import (
	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/providers"
	"github.com/JaimeStill/lyceum/internal/tenants"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Projects     projects.System
	Tenants      tenants.System
	Credentials  credentials.System
	Classifiers  classifiers.System
	TrainingData trainingdata.System
	Training     training.System
}

// NewDomain creates all domain systems from the API runtime. Deleting a
// project first removes its models from the providers.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	projectsSystem := projects.New(db, runtime.Storage, runtime.Logger)
	tenantsSystem := tenants.New(db, runtime.Tenants, runtime.Logger)

	ttl := runtime.Credentials.ExhaustionTTLDuration()
	var ledger credentials.Ledger
	if runtime.Cache != nil {
		ledger = credentials.NewRedisLedger(runtime.Cache, ttl)
	} else {
		ledger = credentials.NewMemoryLedger(ttl)
	}

	credentialsSystem := credentials.New(db, ledger, runtime.Logger, runtime.Pagination)
	classifiersSystem := classifiers.New(db, runtime.Logger)

	examples := trainingdata.New(runtime.Storage, projectsSystem, runtime.TrainingData, runtime.Logger)

	trainingSystem := training.New(
		projectsSystem,
		classifiersSystem,
		credentialsSystem,
		tenantsSystem,
		providers.New(&runtime.Providers, examples, runtime.Logger),
		runtime.Logger,
	)

	projectsSystem.OnDelete(trainingSystem.DeleteAll)

	return &Domain{
		Projects:     projectsSystem,
		Tenants:      tenantsSystem,
		Credentials:  credentialsSystem,
		Classifiers:  classifiersSystem,
		TrainingData: examples,
		Training:     trainingSystem,
	}
}
