// Package training is the model lifecycle orchestrator. It checks the
// class's training policy, dispatches to the provider strategy for the
// project type and turns provider results into classifier records.
package training

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/tenants"
	"github.com/JaimeStill/lyceum/pkg/remote"
)

// RecordStore persists classifier records.
type RecordStore interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]classifiers.Record, error)
	FindByClassifier(ctx context.Context, projectID uuid.UUID, classifierID string) (*classifiers.Record, error)
	CountByClass(ctx context.Context, classID string, projectType projects.Type) (int, error)
	Create(ctx context.Context, rec classifiers.Record) (*classifiers.Record, error)
	UpdateStatuses(ctx context.Context, recs []classifiers.Record) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CredentialResolver finds the provider account a call is made with.
type CredentialResolver interface {
	Resolve(ctx context.Context, classID string, serviceType credentials.ServiceType, id uuid.UUID) (*credentials.Credentials, error)
	Candidates(ctx context.Context, classID string, serviceType credentials.ServiceType) ([]credentials.Candidate, error)
	MarkExhausted(ctx context.Context, id uuid.UUID) error
}

// TenantPolicies loads the class policy quotas are checked against.
type TenantPolicies interface {
	Find(ctx context.Context, classID string) (*tenants.Tenant, error)
}

var serviceTypes = map[projects.Type]credentials.ServiceType{
	projects.Text:   credentials.Conversation,
	projects.Images: credentials.VisualRecognition,
}

var providers = map[projects.Type]remote.Provider{
	projects.Text:    remote.Assistant,
	projects.Images:  remote.VisualRecognition,
	projects.Numbers: remote.Numbers,
}

// System is the lifecycle façade the HTTP layer calls.
type System interface {
	Handler() *Handler

	// ListModels returns the project's models, refreshed from the provider,
	// most recently updated first. Never nil.
	ListModels(ctx context.Context, p *projects.Project) ([]classifiers.Record, error)
	// CreateModel trains a new model. Nothing is stored when training fails.
	CreateModel(ctx context.Context, p *projects.Project) (*classifiers.Record, error)
	TestModel(ctx context.Context, p *projects.Project, modelID string, req TestRequest) ([]classifiers.Classification, error)
	// DeleteModel removes a model remotely and locally. A model the provider
	// has already lost is still removed locally.
	DeleteModel(ctx context.Context, p *projects.Project, modelID string) error
	// DeleteAll removes every remote model of p. It is registered as a
	// project delete hook and never fails the delete.
	DeleteAll(ctx context.Context, p *projects.Project) error
}
