package training

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/faults"
	"github.com/JaimeStill/lyceum/internal/projects"
)

// TestRequest is the body of a label request.
type TestRequest struct {
	Type          string    `json:"type"`
	Text          string    `json:"text"`
	Image         string    `json:"image"`
	Data          string    `json:"data"`
	Numbers       []float64 `json:"numbers"`
	CredentialsID string    `json:"credentialsid"`
}

// Validate checks the request is complete for its own type. It runs
// before any lookup, so a malformed request never costs a provider call.
func (r TestRequest) Validate() error {
	t, err := projects.ParseType(r.Type)
	if err != nil {
		return faults.BadRequest("")
	}

	switch t {
	case projects.Text:
		if strings.TrimSpace(r.Text) == "" || r.CredentialsID == "" {
			return faults.BadRequest("")
		}
	case projects.Images:
		if (r.Image == "" && r.Data == "") || r.CredentialsID == "" {
			return faults.BadRequest("")
		}
	case projects.Numbers:
		if len(r.Numbers) == 0 {
			return faults.BadRequest("")
		}
	}

	return nil
}

// payload validates r against the project being tested and builds the
// strategy input. The credentials id is uuid.Nil for numbers projects.
func (r TestRequest) payload(p *projects.Project) (Payload, uuid.UUID, error) {
	if err := r.Validate(); err != nil {
		return Payload{}, uuid.Nil, err
	}

	if t, _ := projects.ParseType(r.Type); t != p.Type {
		return Payload{}, uuid.Nil, faults.BadRequest("Test type does not match the project type")
	}

	var out Payload
	switch p.Type {
	case projects.Text:
		out.Text = strings.TrimSpace(r.Text)
	case projects.Images:
		if r.Data != "" {
			out.ImageData = decodeImage(r.Data)
		} else {
			out.ImageURL = r.Image
		}
	case projects.Numbers:
		if len(p.Fields) > 0 && len(r.Numbers) != len(p.Fields) {
			return Payload{}, uuid.Nil, faults.BadRequest("Missing data")
		}
		out.Numbers = r.Numbers
		return out, uuid.Nil, nil
	}

	id, err := uuid.Parse(r.CredentialsID)
	if err != nil {
		return Payload{}, uuid.Nil, faults.NotFound()
	}

	return out, id, nil
}

// decodeImage accepts base64, optionally as a data URI. Anything that is
// not base64 is taken as raw bytes.
func decodeImage(s string) []byte {
	if strings.HasPrefix(s, "data:") {
		if _, data, ok := strings.Cut(s, ","); ok {
			s = data
		}
	}

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b
	}
	return []byte(s)
}
