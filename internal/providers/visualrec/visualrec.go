// Package visualrec trains images projects as Watson Visual Recognition
// custom classifiers.
package visualrec

import (
	"archive/zip"
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
	"github.com/JaimeStill/lyceum/pkg/formatting"
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
	"ready":      classifiers.Available,
	"training":   classifiers.Training,
	"retraining": classifiers.Training,
	"failed":     classifiers.Failed,
}

// Strategy implements training.Strategy for images projects.
type Strategy struct {
	client   *remote.Client
	examples trainingdata.System
	opts     Options
	logger   *slog.Logger
}

func New(examples trainingdata.System, opts Options, logger *slog.Logger) *Strategy {
	return &Strategy{
		client:   remote.New(remote.VisualRecognition, opts.Timeout),
		examples: examples,
		opts:     opts,
		logger:   logger.With("provider", "visualrec"),
	}
}

type classifier struct {
	ClassifierID string `json:"classifier_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Created      string `json:"created"`
}

type classifyResponse struct {
	Images []struct {
		Classifiers []struct {
			ClassifierID string `json:"classifier_id"`
			Classes      []struct {
				Class string  `json:"class"`
				Score float64 `json:"score"`
			} `json:"classes"`
		} `json:"classifiers"`
		Error *struct {
			Code        int    `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"images"`
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
	var c classifier
	if err := s.client.JSON(ctx, http.MethodGet, s.endpoint(creds, "/v3/classifiers/"+rec.ClassifierID), auth(creds), nil, &c); err != nil {
		return rec, err
	}
	rec.Status = statuses.Normalize(c.Status)
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

	files, size, err := archives(examples)
	if err != nil {
		return nil, err
	}

	form := remote.Form{
		Fields: map[string]string{"name": p.Name},
		Files:  files,
	}

	var c classifier
	if err := s.client.Multipart(ctx, s.endpoint(creds, "/v3/classifiers"), auth(creds), form, &c); err != nil {
		return nil, err
	}

	s.logger.Info("classifier created",
		"project", p.ID,
		"classifier", c.ClassifierID,
		"labels", len(files),
		"upload", formatting.FormatBytes(size, 1),
	)

	created := time.Now().UTC()
	if t, err := time.Parse(time.RFC3339, c.Created); err == nil {
		created = t.UTC()
	}
	expiry := created.Add(s.opts.ModelTTL)

	status := classifiers.Training
	if c.Status != "" {
		status = statuses.Normalize(c.Status)
	}

	return &classifiers.Record{
		ClassifierID: c.ClassifierID,
		Name:         p.Name,
		URL:          creds.URL + "/v3/classifiers/" + c.ClassifierID,
		Status:       status,
		Created:      created,
		Updated:      created,
		Expiry:       &expiry,
	}, nil
}

// Test classifies an image by URL or by upload. Classes are returned by
// descending score.
func (s *Strategy) Test(ctx context.Context, _ *projects.Project, creds *credentials.Credentials, classifierID string, payload training.Payload) ([]classifiers.Classification, error) {
	form := remote.Form{
		Fields: map[string]string{
			"classifier_ids": classifierID,
			"threshold":      "0",
		},
	}
	if len(payload.ImageData) > 0 {
		form.Files = []remote.File{{
			Field:       "images_file",
			Filename:    "image",
			ContentType: http.DetectContentType(payload.ImageData),
			Data:        payload.ImageData,
		}}
	} else {
		form.Fields["url"] = payload.ImageURL
	}

	var resp classifyResponse
	if err := s.client.Multipart(ctx, s.endpoint(creds, "/v3/classify"), auth(creds), form, &resp); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := []classifiers.Classification{}
	for _, img := range resp.Images {
		if img.Error != nil {
			return nil, &remote.Error{
				Provider:   remote.VisualRecognition,
				StatusCode: cmp.Or(img.Error.Code, http.StatusBadRequest),
				Message:    img.Error.Description,
			}
		}
		for _, c := range img.Classifiers {
			if c.ClassifierID != classifierID {
				continue
			}
			for _, class := range c.Classes {
				out = append(out, classifiers.Classification{
					ClassName:           class.Class,
					Confidence:          class.Score,
					ClassifierTimestamp: now,
				})
			}
		}
	}

	slices.SortStableFunc(out, func(a, b classifiers.Classification) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return out, nil
}

func (s *Strategy) Delete(ctx context.Context, _ *projects.Project, creds *credentials.Credentials, classifierID string) error {
	return s.client.JSON(ctx, http.MethodDelete, s.endpoint(creds, "/v3/classifiers/"+classifierID), auth(creds), nil, nil)
}

// archives zips each label's images into a "<label>_positive_examples"
// part, labels in first-seen order. size is the total zipped bytes.
func archives(examples []trainingdata.Example) ([]remote.File, int64, error) {
	var order []string
	byLabel := make(map[string][]trainingdata.Example)
	for _, ex := range examples {
		name := className(ex.Label)
		if _, ok := byLabel[name]; !ok {
			order = append(order, name)
		}
		byLabel[name] = append(byLabel[name], ex)
	}

	files := make([]remote.File, 0, len(order))
	var size int64
	for _, name := range order {
		data, err := zipImages(byLabel[name])
		if err != nil {
			return nil, 0, fmt.Errorf("zip %s examples: %w", name, err)
		}
		size += int64(len(data))
		files = append(files, remote.File{
			Field:       name + "_positive_examples",
			Filename:    name + ".zip",
			ContentType: "application/zip",
			Data:        data,
		})
	}
	return files, size, nil
}

func zipImages(examples []trainingdata.Example) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, ex := range examples {
		ext := "jpg"
		if ex.ContentType == "image/png" {
			ext = "png"
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: ex.ID + "." + ext, Method: zip.Store})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(ex.Image); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// className replaces the characters Visual Recognition rejects in class
// names.
func className(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '|', '*', '{', '}', '$', '-', '/', '\'', '`', '"', '\\', ' ':
			return '_'
		}
		return r
	}, label)
}
