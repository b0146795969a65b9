package classifiers

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/projects"
)

// System is the classifier record store.
type System interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Record, error)
	FindByClassifier(ctx context.Context, projectID uuid.UUID, classifierID string) (*Record, error)
	// CountByClass counts the records of one project type across a class,
	// the figure tenant quotas are checked against.
	CountByClass(ctx context.Context, classID string, projectType projects.Type) (int, error)
	Create(ctx context.Context, rec Record) (*Record, error)
	// UpdateStatuses persists Status and Updated for each record in one
	// transaction.
	UpdateStatuses(ctx context.Context, recs []Record) error
	Delete(ctx context.Context, id uuid.UUID) error
}
