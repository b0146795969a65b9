package trainingdata_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
	"github.com/JaimeStill/lyceum/pkg/lifecycle"
)

type memStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: make(map[string][]byte)}
}

func (m *memStorage) Start(*lifecycle.Coordinator) error { return nil }

func (m *memStorage) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memStorage) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *memStorage) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, _ := m.List(ctx, prefix)
	for _, k := range keys {
		m.Delete(ctx, k)
	}
	return len(keys), nil
}

func newStore(t *testing.T, blobs *memStorage) trainingdata.System {
	t.Helper()
	cfg := trainingdata.Config{MaxImageSize: "1KB"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return trainingdata.New(blobs, nil, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func textProject() *projects.Project {
	return &projects.Project{ID: uuid.New(), ClassID: "c1", UserID: "s1", Type: projects.Text, Name: "pets"}
}

func TestAddAndReadText(t *testing.T) {
	blobs := newMemStorage()
	s := newStore(t, blobs)
	p := textProject()
	ctx := context.Background()

	for _, cmd := range []trainingdata.AddCommand{
		{Label: "cats", Text: "it purrs"},
		{Label: "dogs", Text: "it barks"},
		{Label: "cats", Text: "  it meows  "},
	} {
		if _, err := s.Add(ctx, p, cmd); err != nil {
			t.Fatalf("add %+v: %v", cmd, err)
		}
	}

	examples, err := s.Examples(ctx, p)
	if err != nil {
		t.Fatalf("examples: %v", err)
	}
	if len(examples) != 3 {
		t.Fatalf("got %d examples, want 3", len(examples))
	}

	byLabel := map[string][]string{}
	for _, ex := range examples {
		byLabel[ex.Label] = append(byLabel[ex.Label], ex.Text)
	}
	slices.Sort(byLabel["cats"])
	if !slices.Equal(byLabel["cats"], []string{"it meows", "it purrs"}) || len(byLabel["dogs"]) != 1 {
		t.Errorf("examples by label = %v", byLabel)
	}

	for k := range blobs.blobs {
		if !strings.HasPrefix(k, projects.TrainingPrefix(p.ID)) || !strings.HasSuffix(k, ".txt") {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestAddNumbers(t *testing.T) {
	s := newStore(t, newMemStorage())
	p := &projects.Project{
		ID:     uuid.New(),
		Type:   projects.Numbers,
		Fields: []projects.Field{{Name: "a", Type: "number"}, {Name: "b", Type: "number"}},
	}
	ctx := context.Background()

	if _, err := s.Add(ctx, p, trainingdata.AddCommand{Label: "big", Numbers: []float64{10, 20}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add(ctx, p, trainingdata.AddCommand{Label: "big", Numbers: []float64{1}}); !errors.Is(err, trainingdata.ErrInvalid) {
		t.Errorf("wrong arity err = %v, want ErrInvalid", err)
	}

	examples, err := s.Examples(ctx, p)
	if err != nil {
		t.Fatalf("examples: %v", err)
	}
	if len(examples) != 1 || !slices.Equal(examples[0].Numbers, []float64{10, 20}) {
		t.Errorf("examples = %+v", examples)
	}
}

func TestAddRejects(t *testing.T) {
	s := newStore(t, newMemStorage())
	images := &projects.Project{ID: uuid.New(), Type: projects.Images}

	tests := []struct {
		name string
		p    *projects.Project
		cmd  trainingdata.AddCommand
		want error
	}{
		{"missing label", textProject(), trainingdata.AddCommand{Text: "x"}, trainingdata.ErrInvalid},
		{"label with slash", textProject(), trainingdata.AddCommand{Label: "a/b", Text: "x"}, trainingdata.ErrInvalid},
		{"dot dot label", textProject(), trainingdata.AddCommand{Label: "..", Text: "x"}, trainingdata.ErrInvalid},
		{"empty text", textProject(), trainingdata.AddCommand{Label: "a", Text: "  "}, trainingdata.ErrInvalid},
		{"missing image", images, trainingdata.AddCommand{Label: "a", ContentType: "image/png"}, trainingdata.ErrInvalid},
		{"image too large", images, trainingdata.AddCommand{Label: "a", Image: make([]byte, 2048), ContentType: "image/png"}, trainingdata.ErrTooLarge},
		{"unsupported image", images, trainingdata.AddCommand{Label: "a", Image: []byte("GIF89a"), ContentType: "image/gif"}, trainingdata.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Add(context.Background(), tt.p, tt.cmd); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExamplesSkipsForeignObjects(t *testing.T) {
	blobs := newMemStorage()
	s := newStore(t, blobs)
	p := &projects.Project{ID: uuid.New(), Type: projects.Images}
	ctx := context.Background()

	if _, err := s.Add(ctx, p, trainingdata.AddCommand{Label: "cat", Image: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	prefix := projects.TrainingPrefix(p.ID)
	blobs.blobs[prefix+"README"] = []byte("x")
	blobs.blobs[prefix+"cat/not-a-uuid.png"] = []byte("x")

	examples, err := s.Examples(ctx, p)
	if err != nil {
		t.Fatalf("examples: %v", err)
	}
	if len(examples) != 1 || examples[0].Label != "cat" || examples[0].ContentType != "image/png" {
		t.Errorf("examples = %+v", examples)
	}
}

func TestExamplesEmptyProject(t *testing.T) {
	examples, err := newStore(t, newMemStorage()).Examples(context.Background(), textProject())
	if err != nil {
		t.Fatalf("examples: %v", err)
	}
	if examples == nil || len(examples) != 0 {
		t.Errorf("examples = %#v, want empty non-nil", examples)
	}
}

func TestConfig(t *testing.T) {
	var cfg trainingdata.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.MaxImageSizeBytes() != 8<<20 || cfg.FetchConcurrency != 8 {
		t.Errorf("defaults = %+v", cfg)
	}

	bad := trainingdata.Config{MaxImageSize: "lots"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("invalid size should fail")
	}
}
