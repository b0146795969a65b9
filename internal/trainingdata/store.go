package trainingdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/pkg/formatting"
	"github.com/JaimeStill/lyceum/pkg/storage"
)

type store struct {
	storage  storage.System
	projects projects.System
	cfg      Config
	logger   *slog.Logger
}

// New creates the training data store over blob storage. projs resolves
// the project a request names.
func New(blobs storage.System, projs projects.System, cfg Config, logger *slog.Logger) System {
	return &store{
		storage:  blobs,
		projects: projs,
		cfg:      cfg,
		logger:   logger.With("system", "trainingdata"),
	}
}

func (s *store) Handler() *Handler {
	return NewHandler(s, s.projects, s.cfg.MaxImageSizeBytes(), s.logger)
}

func (s *store) Add(ctx context.Context, p *projects.Project, cmd AddCommand) (*Example, error) {
	if err := cmd.Validate(p, s.cfg.MaxImageSizeBytes()); err != nil {
		return nil, err
	}

	var body []byte
	switch p.Type {
	case projects.Text:
		body = []byte(cmd.Text)
	case projects.Numbers:
		data, err := json.Marshal(cmd.Numbers)
		if err != nil {
			return nil, fmt.Errorf("encode numbers example: %w", err)
		}
		body = data
	case projects.Images:
		body = cmd.Image
	}

	ex := &Example{
		ID:          uuid.NewString(),
		Label:       cmd.Label,
		Text:        cmd.Text,
		Numbers:     cmd.Numbers,
		Image:       cmd.Image,
		ContentType: cmd.ContentType,
	}

	k := key(p, ex.Label, ex.ID, ex.ContentType)
	if err := s.storage.Upload(ctx, k, bytes.NewReader(body), ex.ContentType); err != nil {
		return nil, fmt.Errorf("store training example: %w", err)
	}

	s.logger.Info("training example added",
		"project", p.ID,
		"label", ex.Label,
		"size", formatting.FormatBytes(int64(len(body)), 1),
	)
	return ex, nil
}

func (s *store) Examples(ctx context.Context, p *projects.Project) ([]Example, error) {
	prefix := projects.TrainingPrefix(p.ID)

	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list training examples: %w", err)
	}

	examples := make([]Example, len(keys))
	kept := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)

	for i, k := range keys {
		label, id, ext, ok := parseKey(prefix, k)
		if !ok {
			s.logger.Warn("skipping unrecognised training object", "key", k)
			continue
		}

		g.Go(func() error {
			ex, err := s.fetch(gctx, p.Type, k, label, id, contentTypeOf(ext))
			if err != nil {
				return err
			}
			examples[i] = ex
			kept[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Example, 0, len(keys))
	for i, ex := range examples {
		if kept[i] {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (s *store) fetch(ctx context.Context, pt projects.Type, k, label, id, contentType string) (Example, error) {
	rc, err := s.storage.Download(ctx, k)
	if err != nil {
		return Example{}, fmt.Errorf("download training example %s: %w", k, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Example{}, fmt.Errorf("read training example %s: %w", k, err)
	}

	ex := Example{ID: id, Label: label, ContentType: contentType}
	switch pt {
	case projects.Text:
		ex.Text = string(data)
	case projects.Numbers:
		if err := json.Unmarshal(data, &ex.Numbers); err != nil {
			return Example{}, fmt.Errorf("decode training example %s: %w", k, err)
		}
	case projects.Images:
		ex.Image = data
	}

	return ex, nil
}
