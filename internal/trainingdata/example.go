// Package trainingdata keeps the labelled examples a project is trained
// from. Examples live in blob storage under the project's training prefix,
// one object per example at "<prefix><label>/<id>.<ext>".
package trainingdata

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/projects"
)

const (
	maxLabelLength = 64
	maxTextLength  = 1024
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// Example is one labelled training item. Exactly one of Text, Numbers or
// Image is set, matching the project type.
type Example struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Text        string    `json:"text,omitempty"`
	Numbers     []float64 `json:"numbers,omitempty"`
	Image       []byte    `json:"-"`
	ContentType string    `json:"contentType"`
}

// AddCommand carries one new example.
type AddCommand struct {
	Label       string    `json:"label"`
	Text        string    `json:"text"`
	Numbers     []float64 `json:"numbers"`
	Image       []byte    `json:"-"`
	ContentType string    `json:"-"`
}

// Validate checks the command against the project it is added to.
func (c *AddCommand) Validate(p *projects.Project, maxImageSize int64) error {
	c.Label = strings.TrimSpace(c.Label)
	if err := validateLabel(c.Label); err != nil {
		return err
	}

	switch p.Type {
	case projects.Text:
		c.Text = strings.TrimSpace(c.Text)
		if c.Text == "" {
			return fmt.Errorf("%w: text required", ErrInvalid)
		}
		if utf8.RuneCountInString(c.Text) > maxTextLength {
			return fmt.Errorf("%w: text longer than %d characters", ErrInvalid, maxTextLength)
		}
		c.ContentType = "text/plain"
	case projects.Numbers:
		if len(c.Numbers) != len(p.Fields) {
			return fmt.Errorf("%w: expected %d numbers, got %d", ErrInvalid, len(p.Fields), len(c.Numbers))
		}
		c.ContentType = "application/json"
	case projects.Images:
		if len(c.Image) == 0 {
			return fmt.Errorf("%w: image required", ErrInvalid)
		}
		if int64(len(c.Image)) > maxImageSize {
			return ErrTooLarge
		}
		if _, ok := imageExtensions[c.ContentType]; !ok {
			return fmt.Errorf("%w: images must be jpeg or png", ErrInvalid)
		}
	}

	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("%w: label required", ErrInvalid)
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("%w: label longer than %d bytes", ErrInvalid, maxLabelLength)
	}
	if strings.ContainsAny(label, "/\\") || label == "." || label == ".." {
		return fmt.Errorf("%w: label %q is not allowed", ErrInvalid, label)
	}
	return nil
}

func extension(contentType string) string {
	switch contentType {
	case "text/plain":
		return "txt"
	case "application/json":
		return "json"
	}
	return imageExtensions[contentType]
}

func contentTypeOf(ext string) string {
	switch ext {
	case "txt":
		return "text/plain"
	case "json":
		return "application/json"
	case "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	}
	return "application/octet-stream"
}

func key(p *projects.Project, label, id, contentType string) string {
	return fmt.Sprintf("%s%s/%s.%s", projects.TrainingPrefix(p.ID), label, id, extension(contentType))
}

// parseKey splits "<prefix><label>/<id>.<ext>" back into its parts.
func parseKey(prefix, k string) (label, id, ext string, ok bool) {
	rest, found := strings.CutPrefix(k, prefix)
	if !found {
		return "", "", "", false
	}

	label, file, found := strings.Cut(rest, "/")
	if !found || label == "" || strings.Contains(file, "/") {
		return "", "", "", false
	}

	ext = strings.TrimPrefix(path.Ext(file), ".")
	id = strings.TrimSuffix(file, path.Ext(file))
	if _, err := uuid.Parse(id); err != nil {
		return "", "", "", false
	}

	return label, id, ext, true
}
