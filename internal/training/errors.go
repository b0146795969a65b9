package training

import (
	"errors"

	"github.com/JaimeStill/lyceum/internal/faults"
	"github.com/JaimeStill/lyceum/internal/projects"
)

// MapHTTPStatus maps lifecycle failures by kind and falls back to the
// project and authorization mapping for errors raised before the
// orchestrator runs.
func MapHTTPStatus(err error) int {
	var f *faults.Error
	if errors.As(err, &f) {
		return f.Kind.Status()
	}
	return projects.MapHTTPStatus(err)
}
