// Package credentials stores the provider accounts a class trains with and
// resolves which account a training request uses.
package credentials

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceType names the provider an account belongs to.
type ServiceType string

const (
	Conversation      ServiceType = "conv"
	VisualRecognition ServiceType = "visrec"
)

// ParseServiceType accepts "conv" or "visrec".
func ParseServiceType(s string) (ServiceType, error) {
	switch t := ServiceType(strings.ToLower(strings.TrimSpace(s))); t {
	case Conversation, VisualRecognition:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown service type %q", ErrInvalid, s)
}

// Credentials is one provider account owned by a class. Password is never
// serialized.
type Credentials struct {
	ID          uuid.UUID   `json:"id"`
	ClassID     string      `json:"classid"`
	ServiceType ServiceType `json:"servicetype"`
	URL         string      `json:"url"`
	Username    string      `json:"username"`
	Password    string      `json:"-"`
	CreatedAt   time.Time   `json:"created"`
}

// Candidate is a configured account annotated with whether its provider has
// reported it out of capacity.
type Candidate struct {
	Credentials
	Exhausted bool
}

// Select returns the first candidate that is not exhausted. Candidates are
// expected in stored order, so the choice is stable for a given state.
func Select(cands []Candidate) (*Credentials, bool) {
	for i := range cands {
		if !cands[i].Exhausted {
			c := cands[i].Credentials
			return &c, true
		}
	}
	return nil, false
}

// CreateCommand adds an account to a class.
type CreateCommand struct {
	ClassID     string      `json:"-"`
	ServiceType ServiceType `json:"servicetype"`
	URL         string      `json:"url"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
}

// Validate normalizes the command and checks it is complete.
func (c *CreateCommand) Validate() error {
	t, err := ParseServiceType(string(c.ServiceType))
	if err != nil {
		return err
	}
	c.ServiceType = t

	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: url must be absolute", ErrInvalid)
	}

	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("%w: username and password required", ErrInvalid)
	}

	return nil
}
