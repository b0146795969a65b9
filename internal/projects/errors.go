package projects

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lyceum/pkg/auth"
)

var (
	ErrNotFound       = errors.New("Not found")
	ErrInvalidProject = errors.New("invalid project")
)

// MapHTTPStatus maps project and caller authorization errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrForbidden):
		return auth.MapHTTPStatus(err)
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidProject):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
