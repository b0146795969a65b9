package credentials

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/pkg/pagination"
)

// System is the credential store and resolver.
type System interface {
	Handler() *Handler

	List(ctx context.Context, classID string, serviceType *ServiceType, page pagination.PageRequest) (*pagination.PageResult[Credentials], error)
	Create(ctx context.Context, cmd CreateCommand) (*Credentials, error)
	// Delete fails with ErrInUse while classifier records reference the
	// account.
	Delete(ctx context.Context, classID string, id uuid.UUID) error

	// Resolve loads an explicitly named account, scoped to classID.
	Resolve(ctx context.Context, classID string, serviceType ServiceType, id uuid.UUID) (*Credentials, error)
	// Candidates lists every account for classID and serviceType in
	// (created, id) order, annotated from the ledger.
	Candidates(ctx context.Context, classID string, serviceType ServiceType) ([]Candidate, error)
	// MarkExhausted records that the provider reported the account out of
	// capacity.
	MarkExhausted(ctx context.Context, id uuid.UUID) error
}
