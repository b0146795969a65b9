package tenants

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lyceum/pkg/auth"
)

var (
	ErrManaged = errors.New("Class is managed and its limits cannot be changed")
	ErrInvalid = errors.New("invalid tenant policy")
)

// MapHTTPStatus maps tenant and caller authorization errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrForbidden):
		return auth.MapHTTPStatus(err)
	case errors.Is(err, ErrManaged):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
