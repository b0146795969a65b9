// Package remote is the HTTP client used to talk to the training providers.
// It reports provider failures as *Error without interpreting them.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Provider is the display name of a training service.
type Provider string

const (
	Assistant         Provider = "Watson Assistant"
	VisualRecognition Provider = "Watson Visual Recognition"
	Numbers           Provider = "Numbers service"
)

// maxErrorBody caps how much of a failed response is retained.
const maxErrorBody = 8 << 10

// ErrMissingCredentials is returned when a call that needs credentials is
// attempted without any.
var ErrMissingCredentials = errors.New("unexpected response when retrieving service credentials")

// Error is a failed exchange with a provider. StatusCode is zero when no
// response was received.
type Error struct {
	Provider   Provider
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Provider, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Auth is HTTP basic authentication. The zero value sends no header.
type Auth struct {
	Username string
	Password string
}

// File is one file part of a multipart form.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a multipart/form-data body.
type Form struct {
	Fields map[string]string
	Files  []File
}

// Client issues requests to one provider.
type Client struct {
	provider Provider
	http     *http.Client
}

// New returns a client whose requests time out after timeout.
func New(provider Provider, timeout time.Duration) *Client {
	return &Client{
		provider: provider,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Provider() Provider {
	return c.provider
}

// JSON sends body as JSON (no body when nil) and decodes a 2xx response
// into out (discarded when nil).
func (c *Client) JSON(ctx context.Context, method, endpoint string, auth Auth, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.provider, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.provider, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, auth, out)
}

// Multipart POSTs form and decodes a 2xx response into out.
func (c *Client) Multipart(ctx context.Context, endpoint string, auth Auth, form Form, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range form.Fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("encode %s form: %w", c.provider, err)
		}
	}

	for _, f := range form.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		header.Set("Content-Type", f.ContentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return fmt.Errorf("encode %s form: %w", c.provider, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("encode %s form: %w", c.provider, err)
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("encode %s form: %w", c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req, auth, out)
}

func (c *Client) do(req *http.Request, auth Auth, out any) error {
	req.Header.Set("Accept", "application/json")
	if auth.Username != "" || auth.Password != "" {
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Provider: c.provider, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
			Body:       string(body),
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    "malformed response: " + err.Error(),
			Err:        err,
		}
	}

	return nil
}

// errorMessage pulls the human-readable message out of the error shapes
// the providers use: {"error": "..."}, {"error": {"description": "..."}},
// {"description": "..."} and {"message": "..."}.
func errorMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg, ok := payload["error"].(string); ok && msg != "" {
			return msg
		}
		if nested, ok := payload["error"].(map[string]any); ok {
			for _, key := range []string{"description", "message", "error"} {
				if msg, ok := nested[key].(string); ok && msg != "" {
					return msg
				}
			}
		}
		for _, key := range []string{"description", "message"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				return msg
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		return text
	}

	return http.StatusText(status)
}
