package training

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/faults"
	"github.com/JaimeStill/lyceum/internal/projects"
)

func TestTestRequestValidate(t *testing.T) {
	creds := uuid.NewString()

	tests := []struct {
		name string
		req  TestRequest
		ok   bool
	}{
		{"text", TestRequest{Type: "text", Text: "hello", CredentialsID: creds}, true},
		{"text blank", TestRequest{Type: "text", Text: "   ", CredentialsID: creds}, false},
		{"text without credentials", TestRequest{Type: "text", Text: "hello"}, false},
		{"image url", TestRequest{Type: "images", Image: "https://x/cat.jpg", CredentialsID: creds}, true},
		{"image data", TestRequest{Type: "images", Data: "aGVsbG8=", CredentialsID: creds}, true},
		{"image missing", TestRequest{Type: "images", CredentialsID: creds}, false},
		{"numbers", TestRequest{Type: "numbers", Numbers: []float64{1}}, true},
		{"numbers empty", TestRequest{Type: "numbers"}, false},
		{"no type", TestRequest{Text: "hello", CredentialsID: creds}, false},
		{"unknown type", TestRequest{Type: "sounds", CredentialsID: creds}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, faults.ErrBadRequest) {
				t.Fatalf("Validate() = %v, want BadRequest", err)
			}
			if err.Error() != "Missing data" {
				t.Errorf("message = %q, want Missing data", err.Error())
			}
		})
	}
}

func TestPayload(t *testing.T) {
	creds := uuid.New()
	images := &projects.Project{Type: projects.Images}
	numbers := &projects.Project{Type: projects.Numbers, Fields: []projects.Field{{Name: "a"}, {Name: "b"}}}

	t.Run("image url", func(t *testing.T) {
		out, id, err := TestRequest{Type: "images", Image: "https://x/cat.jpg", CredentialsID: creds.String()}.payload(images)
		if err != nil {
			t.Fatal(err)
		}
		if out.ImageURL != "https://x/cat.jpg" || out.ImageData != nil || id != creds {
			t.Errorf("payload = %+v, %s", out, id)
		}
	})

	t.Run("data preferred over url", func(t *testing.T) {
		raw := []byte{0xff, 0xd8, 0xff}
		data := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

		out, _, err := TestRequest{Type: "images", Image: "https://x/cat.jpg", Data: data, CredentialsID: creds.String()}.payload(images)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out.ImageData, raw) || out.ImageURL != "" {
			t.Errorf("payload = %+v", out)
		}
	})

	t.Run("numbers field count", func(t *testing.T) {
		if _, _, err := (TestRequest{Type: "numbers", Numbers: []float64{1}}).payload(numbers); !errors.Is(err, faults.ErrBadRequest) {
			t.Errorf("err = %v, want BadRequest", err)
		}
		out, id, err := TestRequest{Type: "numbers", Numbers: []float64{1, 2}}.payload(numbers)
		if err != nil || len(out.Numbers) != 2 || id != uuid.Nil {
			t.Errorf("payload = %+v, %s, %v", out, id, err)
		}
	})

	t.Run("malformed credentials", func(t *testing.T) {
		_, _, err := TestRequest{Type: "images", Image: "https://x/cat.jpg", CredentialsID: "blahblahblah"}.payload(images)
		if !errors.Is(err, faults.ErrNotFound) {
			t.Errorf("err = %v, want NotFound", err)
		}
	})
}

func TestDecodeImage(t *testing.T) {
	raw := []byte("\x89PNG\r\n")
	enc := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"base64", enc, raw},
		{"data uri", "data:image/png;base64," + enc, raw},
		{"raw", "not base64!", []byte("not base64!")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeImage(tt.in); !bytes.Equal(got, tt.want) {
				t.Errorf("decodeImage() = %q, want %q", got, tt.want)
			}
		})
	}
}
