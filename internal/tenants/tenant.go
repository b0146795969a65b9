// Package tenants holds the per-class training policy: how many text and
// image models a class may keep at once.
package tenants

import (
	"fmt"
	"time"

	"github.com/JaimeStill/lyceum/internal/projects"
)

// Tenant is the policy in force for one class. A limit of zero is unlimited.
type Tenant struct {
	ID             string    `json:"id"`
	MaxTextModels  int       `json:"maxTextModels"`
	MaxImageModels int       `json:"maxImageModels"`
	IsManaged      bool      `json:"isManaged"`
	UpdatedAt      time.Time `json:"updated,omitzero"`
}

// Limit returns the model quota for projects of type t. Numbers projects
// train locally on the numbers service and are never capped.
func (t Tenant) Limit(pt projects.Type) int {
	switch pt {
	case projects.Text:
		return t.MaxTextModels
	case projects.Images:
		return t.MaxImageModels
	}
	return 0
}

// UpdateCommand replaces a class's limits.
type UpdateCommand struct {
	MaxTextModels  int `json:"maxTextModels"`
	MaxImageModels int `json:"maxImageModels"`
}

func (c UpdateCommand) Validate() error {
	if c.MaxTextModels < 0 || c.MaxImageModels < 0 {
		return fmt.Errorf("%w: limits cannot be negative", ErrInvalid)
	}
	return nil
}
