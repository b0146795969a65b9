// Package numbers trains numbers projects on the in-house numbers service.
// The service keys each classifier by tenant, student and project, so a
// project has at most one model and its id is the project id.
package numbers

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
	"github.com/JaimeStill/lyceum/pkg/remote"
)

// Options configures the strategy. The service has its own account rather
// than per-class credentials.
type Options struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Strategy implements training.Strategy for numbers projects.
type Strategy struct {
	client   *remote.Client
	examples trainingdata.System
	opts     Options
	logger   *slog.Logger
}

func New(examples trainingdata.System, opts Options, logger *slog.Logger) *Strategy {
	return &Strategy{
		client:   remote.New(remote.Numbers, opts.Timeout),
		examples: examples,
		opts:     opts,
		logger:   logger.With("provider", "numbers"),
	}
}

type row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

type trainRequest struct {
	Fields []projects.Field `json:"fields"`
	Data   []row            `json:"data"`
}

type testRequest struct {
	Data map[string]float64 `json:"data"`
}

func (s *Strategy) endpoint(path string, p *projects.Project) string {
	q := url.Values{}
	q.Set("tenantid", p.ClassID)
	q.Set("studentid", p.UserID)
	q.Set("projectid", p.ID.String())
	return s.opts.URL + path + "?" + q.Encode()
}

func (s *Strategy) auth() remote.Auth {
	return remote.Auth{Username: s.opts.Username, Password: s.opts.Password}
}

// QueryStatuses returns recs unchanged. Numbers models are trained
// synchronously and their state lives on the project.
func (s *Strategy) QueryStatuses(_ context.Context, _ string, recs []classifiers.Record, _ training.Keyring) []classifiers.Record {
	return recs
}

func (s *Strategy) Train(ctx context.Context, p *projects.Project, _ *credentials.Credentials) (*classifiers.Record, error) {
	examples, err := s.examples.Examples(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}

	body := trainRequest{Fields: p.Fields, Data: make([]row, 0, len(examples))}
	for _, ex := range examples {
		body.Data = append(body.Data, row{Label: ex.Label, Values: ex.Numbers})
	}

	if err := s.client.JSON(ctx, http.MethodPost, s.endpoint("/api/classifiers", p), s.auth(), body, nil); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s.logger.Info("numbers classifier trained", "project", p.ID, "rows", len(body.Data))

	return &classifiers.Record{
		ClassifierID: p.ID.String(),
		Name:         p.Name,
		Status:       classifiers.Available,
		Created:      now,
		Updated:      now,
	}, nil
}

// Test returns a classification per label by descending confidence.
func (s *Strategy) Test(ctx context.Context, p *projects.Project, _ *credentials.Credentials, _ string, payload training.Payload) ([]classifiers.Classification, error) {
	body := testRequest{Data: make(map[string]float64, len(p.Fields))}
	for i, f := range p.Fields {
		if i < len(payload.Numbers) {
			body.Data[f.Name] = payload.Numbers[i]
		}
	}

	var scores map[string]float64
	if err := s.client.JSON(ctx, http.MethodPost, s.endpoint("/api/testing", p), s.auth(), body, &scores); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]classifiers.Classification, 0, len(scores))
	for label, score := range scores {
		out = append(out, classifiers.Classification{
			ClassName:           label,
			Confidence:          score,
			ClassifierTimestamp: now,
		})
	}

	slices.SortFunc(out, func(a, b classifiers.Classification) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(a.ClassName, b.ClassName)
	})
	return out, nil
}

func (s *Strategy) Delete(ctx context.Context, p *projects.Project, _ *credentials.Credentials, _ string) error {
	return s.client.JSON(ctx, http.MethodDelete, s.endpoint("/api/classifiers", p), s.auth(), nil, nil)
}
