package classifiers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
)

var errs = repository.ErrorMap{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates the PostgreSQL classifier record store.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "classifiers"),
	}
}

func (r *repo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Record, error) {
	q, args := query.NewBuilder(projection, defaultSort...).
		WhereEquals("ProjectID", projectID).
		Build()

	recs, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query classifiers: %w", err)
	}
	return recs, nil
}

func (r *repo) FindByClassifier(ctx context.Context, projectID uuid.UUID, classifierID string) (*Record, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ProjectID", projectID).
		WhereEquals("ClassifierID", classifierID).
		BuildFirst()

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, errs.Map(err)
	}
	return &rec, nil
}

func (r *repo) CountByClass(ctx context.Context, classID string, projectType projects.Type) (int, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ClassID", classID).
		WhereEquals("ProjectType", projectType).
		BuildCount()

	n, err := repository.QueryScalar[int](ctx, r.db, q, args...)
	if err != nil {
		return 0, fmt.Errorf("count classifiers: %w", err)
	}
	return n, nil
}

func (r *repo) Create(ctx context.Context, rec Record) (*Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	q := `
		INSERT INTO classifiers(
			id, project_id, class_id, project_type, classifier_id, credentials_id,
			name, language, url, created, expiry, status, updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + returning

	args := []any{
		rec.ID, rec.ProjectID, rec.ClassID, rec.ProjectType, rec.ClassifierID, rec.CredentialsID,
		rec.Name, rec.Language, rec.URL, rec.Created, rec.Expiry, rec.Status, rec.Updated,
	}

	stored, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, errs.Map(err)
	}

	r.logger.Info("classifier recorded",
		"id", stored.ID,
		"project", stored.ProjectID,
		"classifier", stored.ClassifierID,
		"status", stored.Status,
	)
	return &stored, nil
}

func (r *repo) UpdateStatuses(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, rec := range recs {
			if err := repository.ExecExpectOne(ctx, tx,
				"UPDATE classifiers SET status = $1, updated = $2 WHERE id = $3",
				rec.Status, rec.Updated, rec.ID,
			); err != nil {
				return struct{}{}, fmt.Errorf("update classifier %s: %w", rec.ID, err)
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return errs.Map(err)
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM classifiers WHERE id = $1", id); err != nil {
		return errs.Map(err)
	}

	r.logger.Info("classifier deleted", "id", id)
	return nil
}
