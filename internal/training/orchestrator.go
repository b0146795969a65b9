package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/faults"
	"github.com/JaimeStill/lyceum/internal/projects"
)

type orchestrator struct {
	projects    projects.System
	records     RecordStore
	credentials CredentialResolver
	tenants     TenantPolicies
	strategies  map[projects.Type]Strategy
	logger      *slog.Logger
}

// New creates the orchestrator. strategies must hold one entry per project
// type.
func New(
	projs projects.System,
	records RecordStore,
	creds CredentialResolver,
	tenants TenantPolicies,
	strategies map[projects.Type]Strategy,
	logger *slog.Logger,
) System {
	return &orchestrator{
		projects:    projs,
		records:     records,
		credentials: creds,
		tenants:     tenants,
		strategies:  strategies,
		logger:      logger.With("system", "training"),
	}
}

func (o *orchestrator) Handler() *Handler {
	return NewHandler(o, o.projects, o.logger)
}

func (o *orchestrator) strategy(t projects.Type) (Strategy, error) {
	s, ok := o.strategies[t]
	if !ok {
		return nil, faults.Unexpected(fmt.Errorf("no training strategy for %s projects", t))
	}
	return s, nil
}

func (o *orchestrator) ListModels(ctx context.Context, p *projects.Project) ([]classifiers.Record, error) {
	if p.Type == projects.Numbers {
		return numbersRecords(p), nil
	}

	s, err := o.strategy(p.Type)
	if err != nil {
		return nil, err
	}

	stored, err := o.records.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, faults.Unexpected(fmt.Errorf("list models for project %s: %w", p.ID, err))
	}
	if len(stored) == 0 {
		return []classifiers.Record{}, nil
	}

	refreshed := s.QueryStatuses(ctx, p.ClassID, stored, o.keyring(ctx, p, stored))

	var changed []classifiers.Record
	for i, rec := range refreshed {
		if rec.Status != stored[i].Status || !rec.Updated.Equal(stored[i].Updated) {
			changed = append(changed, rec)
		}
	}
	if err := o.records.UpdateStatuses(ctx, changed); err != nil {
		o.logger.Warn("classifier statuses not persisted", "project", p.ID, "error", err)
	}

	slices.SortStableFunc(refreshed, func(a, b classifiers.Record) int {
		if c := b.Updated.Compare(a.Updated); c != 0 {
			return c
		}
		return b.Created.Compare(a.Created)
	})

	return refreshed, nil
}

func (o *orchestrator) CreateModel(ctx context.Context, p *projects.Project) (*classifiers.Record, error) {
	s, err := o.strategy(p.Type)
	if err != nil {
		return nil, err
	}

	if p.Type == projects.Numbers {
		return o.createNumbers(ctx, s, p)
	}

	serviceType := serviceTypes[p.Type]

	cands, err := o.credentials.Candidates(ctx, p.ClassID, serviceType)
	if err != nil {
		return nil, faults.Unexpected(fmt.Errorf("load credentials: %w", err))
	}

	usage, err := o.usage(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := Authorize(p, cands, usage); err != nil {
		o.logger.Info("training refused", "project", p.ID, "class", p.ClassID, "reason", faults.KindOf(err))
		return nil, err
	}

	creds, _ := credentials.Select(cands)

	rec, err := s.Train(ctx, p, creds)
	if err != nil {
		translated := faults.Translate(err, string(p.Type))
		if errors.Is(translated, faults.ErrInsufficientCapacity) {
			if markErr := o.credentials.MarkExhausted(ctx, creds.ID); markErr != nil {
				o.logger.Warn("credentials exhaustion not recorded", "credentials", creds.ID, "error", markErr)
			}
		}
		return nil, translated
	}

	rec.ProjectID = p.ID
	rec.ClassID = p.ClassID
	rec.ProjectType = p.Type
	rec.CredentialsID = creds.ID

	stored, err := o.records.Create(ctx, *rec)
	if err != nil {
		if delErr := s.Delete(ctx, p, creds, rec.ClassifierID); delErr != nil {
			o.logger.Error("orphaned remote model after store failure",
				"project", p.ID,
				"classifier", rec.ClassifierID,
				"error", delErr,
			)
		}
		return nil, faults.Unexpected(fmt.Errorf("store model: %w", err))
	}

	o.logger.Info("model training started",
		"project", p.ID,
		"classifier", stored.ClassifierID,
		"status", stored.Status,
	)
	return stored, nil
}

func (o *orchestrator) createNumbers(ctx context.Context, s Strategy, p *projects.Project) (*classifiers.Record, error) {
	rec, err := s.Train(ctx, p, nil)
	if err != nil {
		return nil, faults.Translate(err, string(p.Type))
	}

	model := &projects.NumbersModel{
		Status:  string(rec.Status),
		Created: rec.Created,
		Updated: rec.Updated,
	}
	if err := o.projects.SetNumbersModel(ctx, p.ID, model); err != nil {
		return nil, faults.Unexpected(fmt.Errorf("store numbers model: %w", err))
	}
	p.Model = model

	o.logger.Info("numbers model trained", "project", p.ID, "status", rec.Status)
	return rec, nil
}

func (o *orchestrator) TestModel(ctx context.Context, p *projects.Project, modelID string, req TestRequest) ([]classifiers.Classification, error) {
	payload, credsID, err := req.payload(p)
	if err != nil {
		return nil, err
	}

	s, err := o.strategy(p.Type)
	if err != nil {
		return nil, err
	}

	if p.Type == projects.Numbers {
		if !hasNumbersModel(p, modelID) {
			return nil, faults.NotFound()
		}
		results, err := s.Test(ctx, p, nil, modelID, payload)
		if err == nil {
			err = checkConfidences(results)
		}
		if err != nil {
			return nil, faults.Translate(err, string(p.Type))
		}
		return results, nil
	}

	creds, err := o.resolve(ctx, p, credsID)
	if err != nil {
		return nil, err
	}

	rec, err := o.records.FindByClassifier(ctx, p.ID, modelID)
	if err != nil {
		return nil, o.lookupError(err)
	}
	payload.ClassifierTimestamp = rec.Created

	results, err := s.Test(ctx, p, creds, modelID, payload)
	if err == nil {
		err = checkConfidences(results)
	}
	if err != nil {
		return nil, faults.Translate(err, string(p.Type))
	}
	return results, nil
}

// checkConfidences rejects provider output whose confidences fall outside
// [0, 1].
func checkConfidences(results []classifiers.Classification) error {
	for _, c := range results {
		if math.IsNaN(c.Confidence) || c.Confidence < 0 || c.Confidence > 1 {
			return fmt.Errorf("classification %q has confidence %v outside [0, 1]", c.ClassName, c.Confidence)
		}
	}
	return nil
}

func (o *orchestrator) DeleteModel(ctx context.Context, p *projects.Project, modelID string) error {
	s, err := o.strategy(p.Type)
	if err != nil {
		return err
	}

	if p.Type == projects.Numbers {
		if !hasNumbersModel(p, modelID) {
			return faults.NotFound()
		}
		if err := remoteDelete(ctx, s, p, nil, modelID); err != nil {
			return err
		}
		if err := o.projects.SetNumbersModel(ctx, p.ID, nil); err != nil {
			return faults.Unexpected(fmt.Errorf("clear numbers model: %w", err))
		}
		p.Model = nil
		o.logger.Info("numbers model deleted", "project", p.ID)
		return nil
	}

	rec, err := o.records.FindByClassifier(ctx, p.ID, modelID)
	if err != nil {
		return o.lookupError(err)
	}

	creds, err := o.resolve(ctx, p, rec.CredentialsID)
	if err != nil {
		return err
	}

	if err := remoteDelete(ctx, s, p, creds, modelID); err != nil {
		return err
	}

	if err := o.records.Delete(ctx, rec.ID); err != nil {
		return o.lookupError(err)
	}

	o.logger.Info("model deleted", "project", p.ID, "classifier", modelID)
	return nil
}

func (o *orchestrator) DeleteAll(ctx context.Context, p *projects.Project) error {
	s, err := o.strategy(p.Type)
	if err != nil {
		o.logger.Warn("remote models not removed", "project", p.ID, "error", err)
		return nil
	}

	if p.Type == projects.Numbers {
		if p.Model != nil {
			if err := remoteDelete(ctx, s, p, nil, p.ID.String()); err != nil {
				o.logger.Warn("remote numbers model not removed", "project", p.ID, "error", err)
			}
		}
		return nil
	}

	recs, err := o.records.ListByProject(ctx, p.ID)
	if err != nil {
		o.logger.Warn("remote models not removed", "project", p.ID, "error", err)
		return nil
	}

	keys := o.keyring(ctx, p, recs)
	for _, rec := range recs {
		creds, ok := keys[rec.CredentialsID]
		if !ok {
			continue
		}
		if err := remoteDelete(ctx, s, p, creds, rec.ClassifierID); err != nil {
			o.logger.Warn("remote model not removed", "project", p.ID, "classifier", rec.ClassifierID, "error", err)
		}
	}

	return nil
}

// remoteDelete treats a model the provider has already lost as deleted.
func remoteDelete(ctx context.Context, s Strategy, p *projects.Project, creds *credentials.Credentials, modelID string) error {
	err := s.Delete(ctx, p, creds, modelID)
	if err == nil {
		return nil
	}

	translated := faults.Translate(err, string(p.Type))
	if errors.Is(translated, faults.ErrRemoteModelMissing) {
		return nil
	}
	return translated
}

func (o *orchestrator) usage(ctx context.Context, p *projects.Project) (Usage, error) {
	tenant, err := o.tenants.Find(ctx, p.ClassID)
	if err != nil {
		return Usage{}, faults.Unexpected(fmt.Errorf("load tenant policy: %w", err))
	}

	count, err := o.records.CountByClass(ctx, p.ClassID, p.Type)
	if err != nil {
		return Usage{}, faults.Unexpected(fmt.Errorf("count class models: %w", err))
	}

	return Usage{Current: count, Limit: tenant.Limit(p.Type)}, nil
}

func (o *orchestrator) resolve(ctx context.Context, p *projects.Project, id uuid.UUID) (*credentials.Credentials, error) {
	creds, err := o.credentials.Resolve(ctx, p.ClassID, serviceTypes[p.Type], id)
	if err != nil {
		return nil, o.lookupError(err)
	}
	return creds, nil
}

func (o *orchestrator) keyring(ctx context.Context, p *projects.Project, recs []classifiers.Record) Keyring {
	keys := make(Keyring)
	for _, rec := range recs {
		id := rec.CredentialsID
		if _, seen := keys[id]; seen {
			continue
		}
		creds, err := o.resolve(ctx, p, id)
		if err != nil {
			o.logger.Warn("classifier credentials unavailable", "credentials", id, "error", err)
			continue
		}
		keys[id] = creds
	}
	return keys
}

// lookupError reports missing local rows as NotFound and anything else as
// Unexpected.
func (o *orchestrator) lookupError(err error) error {
	if errors.Is(err, classifiers.ErrNotFound) || errors.Is(err, credentials.ErrNotFound) {
		return faults.NotFound()
	}
	return faults.Unexpected(err)
}

func hasNumbersModel(p *projects.Project, modelID string) bool {
	return p.Model != nil && modelID == p.ID.String()
}

// numbersRecords presents a numbers project as its own single classifier.
func numbersRecords(p *projects.Project) []classifiers.Record {
	if p.Model == nil {
		return []classifiers.Record{}
	}

	return []classifiers.Record{{
		ProjectID:    p.ID,
		ClassID:      p.ClassID,
		ProjectType:  p.Type,
		ClassifierID: p.ID.String(),
		Name:         p.Name,
		Created:      p.Model.Created,
		Updated:      p.Model.Updated,
		Status:       numbersStatus.Normalize(p.Model.Status),
	}}
}

var numbersStatus = classifiers.StatusTable{
	"available": classifiers.Available,
	"training":  classifiers.Training,
	"failed":    classifiers.Failed,
}
