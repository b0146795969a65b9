package training_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/lyceum/internal/faults"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/pkg/auth"
	"github.com/JaimeStill/lyceum/pkg/remote"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", auth.ErrUnauthorized, http.StatusUnauthorized},
		{"other student", auth.ErrForbidden, http.StatusForbidden},
		{"wrapped forbidden", fmt.Errorf("list models: %w", auth.ErrForbidden), http.StatusForbidden},
		{"missing project", projects.ErrNotFound, http.StatusNotFound},
		{"capacity", faults.Capacity(remote.Assistant), http.StatusConflict},
		{"missing model", faults.NotFound(), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := training.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
