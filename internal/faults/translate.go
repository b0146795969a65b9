package faults

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JaimeStill/lyceum/pkg/remote"
)

var capacitySignals = []string{
	"maximum workspaces limit exceeded",
	"this plan instance can have only",
}

var trainingDataSignals = []string{
	"not enough",
	"insufficient training data",
	"too few",
}

// Translate classifies a raw failure from a provider call made for a
// project of projectType. Errors that are already classified pass through.
func Translate(err error, projectType string) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	if errors.Is(err, remote.ErrMissingCredentials) {
		out := Missing(projectType)
		out.Err = err
		return out
	}

	var re *remote.Error
	if !errors.As(err, &re) {
		return Unexpected(err)
	}

	message := strings.ToLower(re.Message + " " + re.Body)

	var out *Error
	switch {
	case re.StatusCode == http.StatusUnauthorized || re.StatusCode == http.StatusForbidden:
		out = Rejected(re.Provider)
	case re.StatusCode == http.StatusTooManyRequests:
		out = RateLimited(re.Provider)
	case containsAny(message, trainingDataSignals):
		out = InsufficientData(re.Provider, re.Message)
	case containsAny(message, capacitySignals):
		out = Capacity(re.Provider)
	case strings.Contains(message, strings.ToLower(remote.ErrMissingCredentials.Error())):
		out = Missing(projectType)
	case re.StatusCode == http.StatusNotFound:
		out = RemoteMissing(re.Provider)
	default:
		out = Unexpected(err)
	}

	out.Provider = string(re.Provider)
	out.Err = err
	if out.Detail == "" {
		out.Detail = re.Error()
	}

	return out
}

func containsAny(s string, signals []string) bool {
	for _, signal := range signals {
		if strings.Contains(s, signal) {
			return true
		}
	}
	return false
}
