package classifiers

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound  = errors.New("Not found")
	ErrDuplicate = errors.New("classifier already recorded for project")
)

// MapHTTPStatus maps classifier record errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
