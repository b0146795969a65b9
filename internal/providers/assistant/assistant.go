// Package assistant trains text projects as Watson Assistant workspaces.
// Each label becomes an intent whose examples are the label's stored texts.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
	"github.com/JaimeStill/lyceum/pkg/remote"
)

// Options configures the strategy.
type Options struct {
	Version     string
	Timeout     time.Duration
	ModelTTL    time.Duration
	Concurrency int
}

var statuses = classifiers.StatusTable{
	"Available":    classifiers.Available,
	"Training":     classifiers.Training,
	"Failed":       classifiers.Failed,
	"Non Existent": classifiers.Unknown,
}

// Strategy implements training.Strategy for text projects.
type Strategy struct {
	client   *remote.Client
	examples trainingdata.System
	opts     Options
	logger   *slog.Logger
}

func New(examples trainingdata.System, opts Options, logger *slog.Logger) *Strategy {
	return &Strategy{
		client:   remote.New(remote.Assistant, opts.Timeout),
		examples: examples,
		opts:     opts,
		logger:   logger.With("provider", "assistant"),
	}
}

type workspace struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Status      string `json:"status"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
}

type intent struct {
	Intent   string    `json:"intent"`
	Examples []example `json:"examples"`
}

type example struct {
	Text string `json:"text"`
}

type createWorkspace struct {
	Name        string            `json:"name"`
	Language    string            `json:"language"`
	Description string            `json:"description"`
	Intents     []intent          `json:"intents"`
	Metadata    map[string]string `json:"metadata"`
}

type messageRequest struct {
	Input            messageInput `json:"input"`
	AlternateIntents bool         `json:"alternate_intents"`
}

type messageInput struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Intents []struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	} `json:"intents"`
}

func (s *Strategy) endpoint(creds *credentials.Credentials, path string) string {
	return creds.URL + path + "?version=" + url.QueryEscape(s.opts.Version)
}

func auth(creds *credentials.Credentials) remote.Auth {
	return remote.Auth{Username: creds.Username, Password: creds.Password}
}

func (s *Strategy) QueryStatuses(ctx context.Context, _ string, recs []classifiers.Record, keys training.Keyring) []classifiers.Record {
	return training.Refresh(ctx, recs, keys, s.opts.Concurrency, s.logger, s.status)
}

func (s *Strategy) status(ctx context.Context, creds *credentials.Credentials, rec classifiers.Record) (classifiers.Record, error) {
	var ws workspace
	if err := s.client.JSON(ctx, http.MethodGet, s.endpoint(creds, "/v1/workspaces/"+rec.ClassifierID), auth(creds), nil, &ws); err != nil {
		return rec, err
	}

	rec.Status = statuses.Normalize(ws.Status)
	if updated, ok := parseTime(ws.Updated); ok {
		rec.Updated = updated
	}
	return rec, nil
}

func (s *Strategy) Train(ctx context.Context, p *projects.Project, creds *credentials.Credentials) (*classifiers.Record, error) {
	if creds == nil {
		return nil, remote.ErrMissingCredentials
	}

	examples, err := s.examples.Examples(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}

	body := createWorkspace{
		Name:        p.Name,
		Language:    p.Language,
		Description: "lyceum project " + p.ID.String(),
		Intents:     intents(examples),
		Metadata:    map[string]string{"projectid": p.ID.String(), "classid": p.ClassID},
	}

	var ws workspace
	if err := s.client.JSON(ctx, http.MethodPost, s.endpoint(creds, "/v1/workspaces"), auth(creds), body, &ws); err != nil {
		return nil, err
	}

	created, ok := parseTime(ws.Created)
	if !ok {
		created = time.Now().UTC()
	}
	updated, ok := parseTime(ws.Updated)
	if !ok {
		updated = created
	}
	expiry := created.Add(s.opts.ModelTTL)

	status := classifiers.Training
	if ws.Status != "" {
		status = statuses.Normalize(ws.Status)
	}

	s.logger.Info("workspace created", "project", p.ID, "workspace", ws.WorkspaceID, "intents", len(body.Intents))

	return &classifiers.Record{
		ClassifierID: ws.WorkspaceID,
		Name:         p.Name,
		Language:     p.Language,
		URL:          creds.URL + "/v1/workspaces/" + ws.WorkspaceID,
		Status:       status,
		Created:      created,
		Updated:      updated,
		Expiry:       &expiry,
	}, nil
}

func (s *Strategy) Test(ctx context.Context, _ *projects.Project, creds *credentials.Credentials, classifierID string, payload training.Payload) ([]classifiers.Classification, error) {
	req := messageRequest{
		Input:            messageInput{Text: payload.Text},
		AlternateIntents: true,
	}

	var resp messageResponse
	if err := s.client.JSON(ctx, http.MethodPost, s.endpoint(creds, "/v1/workspaces/"+classifierID+"/message"), auth(creds), req, &resp); err != nil {
		return nil, err
	}

	out := make([]classifiers.Classification, 0, len(resp.Intents))
	for _, in := range resp.Intents {
		out = append(out, classifiers.Classification{
			ClassName:           in.Intent,
			Confidence:          in.Confidence,
			ClassifierTimestamp: payload.ClassifierTimestamp,
		})
	}
	return out, nil
}

func (s *Strategy) Delete(ctx context.Context, _ *projects.Project, creds *credentials.Credentials, classifierID string) error {
	return s.client.JSON(ctx, http.MethodDelete, s.endpoint(creds, "/v1/workspaces/"+classifierID), auth(creds), nil, nil)
}

// intents groups texts by label in first-seen order. Duplicate texts within
// a label are dropped.
func intents(examples []trainingdata.Example) []intent {
	out := []intent{}
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for _, ex := range examples {
		name := intentName(ex.Label)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			seen[name] = make(map[string]bool)
			out = append(out, intent{Intent: name, Examples: []example{}})
		}
		if seen[name][ex.Text] {
			continue
		}
		seen[name][ex.Text] = true
		out[i].Examples = append(out[i].Examples, example{Text: ex.Text})
	}

	return out
}

// intentName replaces the characters Assistant rejects in intent names.
func intentName(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
