package credentials

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lyceum/pkg/auth"
)

var (
	ErrNotFound = errors.New("Not found")
	ErrInUse    = errors.New("Credentials are still in use by trained models")
	ErrInvalid  = errors.New("invalid credentials")
)

// MapHTTPStatus maps credential and caller authorization errors to HTTP
// status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrForbidden):
		return auth.MapHTTPStatus(err)
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInUse):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
