package projects

import (
	"context"

	"github.com/google/uuid"
)

// DeleteHook runs before a project row is removed. A hook error aborts
// the delete.
type DeleteHook func(ctx context.Context, p *Project) error

// System is the project store.
type System interface {
	Handler() *Handler

	// Find loads a project owned by classID and userID.
	Find(ctx context.Context, classID, userID string, id uuid.UUID) (*Project, error)
	Create(ctx context.Context, cmd CreateCommand) (*Project, error)
	// Delete runs the delete hooks, removes the project (its classifier
	// records cascade) and purges its training examples.
	Delete(ctx context.Context, classID, userID string, id uuid.UUID) error
	// SetNumbersModel records the numbers classifier state; nil clears it.
	SetNumbersModel(ctx context.Context, id uuid.UUID, model *NumbersModel) error

	OnDelete(hook DeleteHook)
}
