package training_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/internal/tenants"
	"github.com/JaimeStill/lyceum/internal/training"
	"github.com/JaimeStill/lyceum/pkg/remote"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*projects.Project
}

func newFakeProjects(ps ...*projects.Project) *fakeProjects {
	f := &fakeProjects{projects: make(map[uuid.UUID]*projects.Project)}
	for _, p := range ps {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Handler() *projects.Handler { return nil }

func (f *fakeProjects) Find(_ context.Context, classID, userID string, id uuid.UUID) (*projects.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok || p.ClassID != classID || p.UserID != userID {
		return nil, projects.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) Create(context.Context, projects.CreateCommand) (*projects.Project, error) {
	return nil, errors.New("not supported")
}

func (f *fakeProjects) Delete(context.Context, string, string, uuid.UUID) error { return nil }

func (f *fakeProjects) SetNumbersModel(_ context.Context, id uuid.UUID, m *projects.NumbersModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return projects.ErrNotFound
	}
	p.Model = m
	return nil
}

func (f *fakeProjects) OnDelete(projects.DeleteHook) {}

type fakeRecords struct {
	mu      sync.Mutex
	records []classifiers.Record
	updates int
}

func (f *fakeRecords) ListByProject(_ context.Context, projectID uuid.UUID) ([]classifiers.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []classifiers.Record{}
	for _, r := range f.records {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) FindByClassifier(_ context.Context, projectID uuid.UUID, classifierID string) (*classifiers.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ProjectID == projectID && r.ClassifierID == classifierID {
			return &r, nil
		}
	}
	return nil, classifiers.ErrNotFound
}

func (f *fakeRecords) CountByClass(_ context.Context, classID string, t projects.Type) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.ClassID == classID && r.ProjectType == t {
			n++
		}
	}
	return n, nil
}

func (f *fakeRecords) Create(_ context.Context, rec classifiers.Record) (*classifiers.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = uuid.New()
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeRecords) UpdateStatuses(_ context.Context, recs []classifiers.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range recs {
		for i := range f.records {
			if f.records[i].ID == u.ID {
				f.records[i].Status = u.Status
				f.records[i].Updated = u.Updated
				f.updates++
			}
		}
	}
	return nil
}

func (f *fakeRecords) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.records, func(r classifiers.Record) bool { return r.ID == id })
	if i < 0 {
		return classifiers.ErrNotFound
	}
	f.records = slices.Delete(f.records, i, i+1)
	return nil
}

type fakeCredentials struct {
	mu        sync.Mutex
	stored    []credentials.Credentials
	exhausted map[uuid.UUID]bool
}

func (f *fakeCredentials) add(classID string, t credentials.ServiceType) credentials.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := credentials.Credentials{
		ID:          uuid.New(),
		ClassID:     classID,
		ServiceType: t,
		URL:         "https://watson.example.com",
		Username:    "apikey",
		Password:    "secret",
	}
	f.stored = append(f.stored, c)
	return c
}

func (f *fakeCredentials) Resolve(_ context.Context, classID string, t credentials.ServiceType, id uuid.UUID) (*credentials.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.stored {
		if c.ID == id && c.ClassID == classID && c.ServiceType == t {
			return &c, nil
		}
	}
	return nil, credentials.ErrNotFound
}

func (f *fakeCredentials) Candidates(_ context.Context, classID string, t credentials.ServiceType) ([]credentials.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []credentials.Candidate
	for _, c := range f.stored {
		if c.ClassID == classID && c.ServiceType == t {
			out = append(out, credentials.Candidate{Credentials: c, Exhausted: f.exhausted[c.ID]})
		}
	}
	return out, nil
}

func (f *fakeCredentials) MarkExhausted(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exhausted == nil {
		f.exhausted = make(map[uuid.UUID]bool)
	}
	f.exhausted[id] = true
	return nil
}

type fakeTenants struct {
	tenant tenants.Tenant
}

func (f *fakeTenants) Find(_ context.Context, classID string) (*tenants.Tenant, error) {
	t := f.tenant
	t.ID = classID
	return &t, nil
}

// fakeStrategy behaves like a provider whose responses are chosen by the
// project name, the way a fake training server would.
type fakeStrategy struct {
	provider remote.Provider

	mu      sync.Mutex
	remote  map[string]classifiers.Status
	deletes []string
}

func newFakeStrategy(provider remote.Provider) *fakeStrategy {
	return &fakeStrategy{provider: provider, remote: make(map[string]classifiers.Status)}
}

func (f *fakeStrategy) fail(status int, message string) error {
	return &remote.Error{Provider: f.provider, StatusCode: status, Message: message}
}

func (f *fakeStrategy) QueryStatuses(ctx context.Context, _ string, recs []classifiers.Record, keys training.Keyring) []classifiers.Record {
	return training.Refresh(ctx, recs, keys, 4, discard, func(_ context.Context, _ *credentials.Credentials, rec classifiers.Record) (classifiers.Record, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		status, ok := f.remote[rec.ClassifierID]
		if !ok {
			return rec, f.fail(http.StatusNotFound, "Resource not found")
		}
		rec.Status = status
		return rec, nil
	})
}

func (f *fakeStrategy) Train(_ context.Context, p *projects.Project, _ *credentials.Credentials) (*classifiers.Record, error) {
	switch p.Name {
	case "no more room":
		if f.provider == remote.Assistant {
			return nil, f.fail(http.StatusBadRequest, "Maximum workspaces limit exceeded. Limit = 5")
		}
		return nil, f.fail(http.StatusBadRequest, "Cannot execute learning task : this plan instance can have only 1 custom classifier(s), and 1 already exist.")
	case "too fast":
		return nil, f.fail(http.StatusTooManyRequests, "Rate limit exceeded")
	case "bad creds":
		return nil, f.fail(http.StatusForbidden, "Forbidden")
	case "insufficient":
		if f.provider == remote.VisualRecognition {
			return nil, f.fail(http.StatusBadRequest, "Cannot execute learning task. : Must provide at least 10 positive example images. Not enough images to train the classifier")
		}
		return nil, f.fail(http.StatusBadRequest, "Not enough images to train the classifier")
	case "broken":
		return nil, f.fail(http.StatusInternalServerError, "upstream exploded")
	}

	now := time.Now().UTC()
	if f.provider == remote.Numbers {
		return &classifiers.Record{
			ClassifierID: p.ID.String(),
			Name:         p.Name,
			Status:       classifiers.Available,
			Created:      now,
			Updated:      now,
		}, nil
	}

	id := "NEW-" + uuid.NewString()[:8]
	f.mu.Lock()
	f.remote[id] = classifiers.Training
	f.mu.Unlock()

	expiry := now.Add(time.Hour)
	return &classifiers.Record{
		ClassifierID: id,
		Name:         p.Name,
		Language:     p.Language,
		Status:       classifiers.Training,
		Created:      now,
		Updated:      now,
		Expiry:       &expiry,
	}, nil
}

func (f *fakeStrategy) Test(_ context.Context, p *projects.Project, _ *credentials.Credentials, _ string, payload training.Payload) ([]classifiers.Classification, error) {
	ts := payload.ClassifierTimestamp
	if p.Name == "overconfident" {
		return []classifiers.Classification{
			{ClassName: "apple", Confidence: 85, ClassifierTimestamp: ts},
			{ClassName: "pear", Confidence: -3, ClassifierTimestamp: ts},
		}, nil
	}
	return []classifiers.Classification{
		{ClassName: "first", Confidence: 0.8, ClassifierTimestamp: ts},
		{ClassName: "second", Confidence: 0.15, ClassifierTimestamp: ts},
	}, nil
}

func (f *fakeStrategy) Delete(_ context.Context, p *projects.Project, _ *credentials.Credentials, classifierID string) error {
	if p.Name == "locked" {
		return f.fail(http.StatusUnauthorized, "Unauthorized")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, classifierID)
	if _, ok := f.remote[classifierID]; !ok && f.provider != remote.Numbers {
		return f.fail(http.StatusNotFound, "Resource not found")
	}
	delete(f.remote, classifierID)
	return nil
}

type harness struct {
	projects    *fakeProjects
	records     *fakeRecords
	credentials *fakeCredentials
	tenants     *fakeTenants
	text        *fakeStrategy
	images      *fakeStrategy
	numbers     *fakeStrategy
	sys         training.System
}

func newHarness(ps ...*projects.Project) *harness {
	h := &harness{
		projects:    newFakeProjects(ps...),
		records:     &fakeRecords{},
		credentials: &fakeCredentials{},
		tenants:     &fakeTenants{tenant: tenants.Tenant{MaxTextModels: 5, MaxImageModels: 5}},
		text:        newFakeStrategy(remote.Assistant),
		images:      newFakeStrategy(remote.VisualRecognition),
		numbers:     newFakeStrategy(remote.Numbers),
	}

	h.sys = training.New(
		h.projects,
		h.records,
		h.credentials,
		h.tenants,
		map[projects.Type]training.Strategy{
			projects.Text:    h.text,
			projects.Images:  h.images,
			projects.Numbers: h.numbers,
		},
		discard,
	)
	return h
}

func newProject(t projects.Type, name string) *projects.Project {
	p := &projects.Project{
		ID:       uuid.New(),
		ClassID:  "class-1",
		UserID:   "student-1",
		Type:     t,
		Name:     name,
		Language: "en",
	}
	if t == projects.Numbers {
		p.Fields = []projects.Field{{Name: "a", Type: "number"}, {Name: "b", Type: "number"}}
	}
	return p
}
