// Package projects stores the student projects that models are trained for.
// Numbers projects also carry the state of their single classifier.
package projects

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type selects the training provider for a project.
type Type string

const (
	Text    Type = "text"
	Images  Type = "images"
	Numbers Type = "numbers"
)

// ParseType accepts "text", "images" or "numbers".
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case Text, Images, Numbers:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown project type %q", ErrInvalidProject, s)
}

func (t Type) String() string {
	return string(t)
}

// Field is one input column of a numbers project.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NumbersModel is the classifier state kept on a trained numbers project.
type NumbersModel struct {
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Project is a student's training project.
type Project struct {
	ID        uuid.UUID     `json:"id"`
	ClassID   string        `json:"classid"`
	UserID    string        `json:"userid"`
	Type      Type          `json:"type"`
	Name      string        `json:"name"`
	Language  string        `json:"language"`
	Fields    []Field       `json:"fields,omitempty"`
	Model     *NumbersModel `json:"-"`
	CreatedAt time.Time     `json:"created"`
}

// TrainingPrefix is the storage prefix holding a project's training examples.
func TrainingPrefix(id uuid.UUID) string {
	return fmt.Sprintf("training/%s/", id)
}

// CreateCommand carries a new project. ClassID and UserID come from the
// request path, never the body.
type CreateCommand struct {
	ClassID  string  `json:"-"`
	UserID   string  `json:"-"`
	Type     Type    `json:"type"`
	Name     string  `json:"name"`
	Language string  `json:"language"`
	Fields   []Field `json:"fields"`
}

// Validate normalizes the command and checks it is complete.
func (c *CreateCommand) Validate() error {
	t, err := ParseType(string(c.Type))
	if err != nil {
		return err
	}
	c.Type = t

	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidProject)
	}
	if c.Language == "" {
		c.Language = "en"
	}

	if c.Type != Numbers {
		c.Fields = nil
		return nil
	}

	if len(c.Fields) == 0 {
		return fmt.Errorf("%w: numbers projects need at least one field", ErrInvalidProject)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("%w: field names must be unique and non-empty", ErrInvalidProject)
		}
		seen[f.Name] = true
	}

	return nil
}
