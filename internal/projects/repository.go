package projects

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
	"github.com/JaimeStill/lyceum/pkg/storage"
)

var errs = repository.ErrorMap{NotFound: ErrNotFound}

type repo struct {
	db      *sql.DB
	storage storage.System
	logger  *slog.Logger

	mu    sync.RWMutex
	hooks []DeleteHook
}

// New creates the PostgreSQL project store. Training examples under
// TrainingPrefix are purged from store when a project is deleted.
func New(db *sql.DB, store storage.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		storage: store,
		logger:  logger.With("system", "projects"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) OnDelete(hook DeleteHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

func (r *repo) Find(ctx context.Context, classID, userID string, id uuid.UUID) (*Project, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("ClassID", classID).
		WhereEquals("UserID", userID).
		BuildFirst()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProject)
	if err != nil {
		return nil, errs.Map(err)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Project, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	fields, err := json.Marshal(cmd.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode project fields: %w", err)
	}
	if cmd.Fields == nil {
		fields = []byte("[]")
	}

	q := `
		INSERT INTO projects(id, class_id, user_id, type, name, language, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + returning

	args := []any{uuid.New(), cmd.ClassID, cmd.UserID, cmd.Type, cmd.Name, cmd.Language, fields}

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProject)
	if err != nil {
		return nil, errs.Map(err)
	}

	r.logger.Info("project created", "id", p.ID, "class", p.ClassID, "type", p.Type)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, classID, userID string, id uuid.UUID) error {
	p, err := r.Find(ctx, classID, userID, id)
	if err != nil {
		return err
	}

	r.mu.RLock()
	hooks := append([]DeleteHook(nil), r.hooks...)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, p); err != nil {
			return fmt.Errorf("prepare project delete: %w", err)
		}
	}

	err = repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM projects WHERE id = $1 AND class_id = $2 AND user_id = $3",
		id, classID, userID,
	)
	if err != nil {
		return errs.Map(err)
	}

	removed, err := r.storage.DeletePrefix(ctx, TrainingPrefix(id))
	if err != nil {
		r.logger.Warn("training data purge failed after project delete", "id", id, "error", err)
	}

	r.logger.Info("project deleted", "id", id, "examples_removed", removed)
	return nil
}

func (r *repo) SetNumbersModel(ctx context.Context, id uuid.UUID, model *NumbersModel) error {
	var err error
	if model == nil {
		err = repository.ExecExpectOne(ctx, r.db, `
			UPDATE projects
			SET model_status = NULL, model_created = NULL, model_updated = NULL
			WHERE id = $1`,
			id,
		)
	} else {
		err = repository.ExecExpectOne(ctx, r.db, `
			UPDATE projects
			SET model_status = $2, model_created = $3, model_updated = $4
			WHERE id = $1`,
			id, model.Status, model.Created, model.Updated,
		)
	}

	if err != nil {
		return errs.Map(err)
	}
	return nil
}
