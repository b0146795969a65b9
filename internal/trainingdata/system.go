package trainingdata

import (
	"context"

	"github.com/JaimeStill/lyceum/internal/projects"
)

// System stores and reads training examples.
type System interface {
	Handler() *Handler

	Add(ctx context.Context, p *projects.Project, cmd AddCommand) (*Example, error)
	// Examples returns every stored example of p grouped by label in
	// lexical key order.
	Examples(ctx context.Context, p *projects.Project) ([]Example, error)
}
