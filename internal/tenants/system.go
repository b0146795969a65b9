package tenants

import "context"

// System is the tenant policy store.
type System interface {
	Handler() *Handler

	// Find returns the stored policy for classID, or the configured default
	// when the class has none.
	Find(ctx context.Context, classID string) (*Tenant, error)
	// Update stores new limits. Managed classes are rejected with ErrManaged.
	Update(ctx context.Context, classID string, cmd UpdateCommand) (*Tenant, error)
}
