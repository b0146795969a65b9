// Package classifiers stores the trained model records of text and image
// projects and defines the uniform status vocabulary every provider status is
// normalized into.
package classifiers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/projects"
)

// Status is the provider-independent state of a trained model.
type Status string

const (
	Training  Status = "Training"
	Available Status = "Available"
	Failed    Status = "Failed"
	Unknown   Status = "Unknown"
)

// StatusTable maps one provider's status vocabulary onto Status. Keys are
// matched case-insensitively.
type StatusTable map[string]Status

// Normalize maps raw into Status. Unrecognized values are Unknown.
func (t StatusTable) Normalize(raw string) Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	for k, s := range t {
		if strings.ToLower(k) == key {
			return s
		}
	}
	return Unknown
}

// Record is one trained model instance of a project.
type Record struct {
	ID            uuid.UUID     `json:"-"`
	ProjectID     uuid.UUID     `json:"-"`
	ClassID       string        `json:"-"`
	ProjectType   projects.Type `json:"-"`
	ClassifierID  string        `json:"classifierid"`
	CredentialsID uuid.UUID     `json:"credentialsid,omitzero"`
	Name          string        `json:"name"`
	Language      string        `json:"-"`
	URL           string        `json:"-"`
	Created       time.Time     `json:"created"`
	Expiry        *time.Time    `json:"expiry,omitempty"`
	Status        Status        `json:"status"`
	Updated       time.Time     `json:"updated"`
}

// Classification is one label returned by testing a model. It is never stored.
type Classification struct {
	ClassName           string    `json:"class_name"`
	Confidence          float64   `json:"confidence"`
	ClassifierTimestamp time.Time `json:"classifierTimestamp"`
}
