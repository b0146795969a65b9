package trainingdata

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/pkg/handlers"
)

var (
	ErrInvalid  = errors.New("invalid training example")
	ErrTooLarge = errors.New("training image too large")
)

// MapHTTPStatus maps training data, project and caller authorization errors
// to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooLarge), errors.Is(err, handlers.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return projects.MapHTTPStatus(err)
}
