package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
)

type repo struct {
	db       *sql.DB
	defaults Config
	logger   *slog.Logger
}

// New creates the PostgreSQL tenant store. Classes without a row get the
// limits in defaults.
func New(db *sql.DB, defaults Config, logger *slog.Logger) System {
	return &repo{
		db:       db,
		defaults: defaults,
		logger:   logger.With("system", "tenants"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, classID string) (*Tenant, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ID", classID).
		BuildFirst()

	t, err := repository.QueryOne(ctx, r.db, q, args, scanTenant)
	if errors.Is(err, sql.ErrNoRows) {
		t = r.defaults.Default(classID)
		return &t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant %s: %w", classID, err)
	}
	return &t, nil
}

func (r *repo) Update(ctx context.Context, classID string, cmd UpdateCommand) (*Tenant, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO tenants(id, max_text_models, max_image_models, is_managed, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		ON CONFLICT (id) DO UPDATE SET
			max_text_models = EXCLUDED.max_text_models,
			max_image_models = EXCLUDED.max_image_models,
			updated_at = NOW()
		WHERE tenants.is_managed = FALSE
		RETURNING id, max_text_models, max_image_models, is_managed, updated_at`

	t, err := repository.QueryOne(ctx, r.db, q, []any{classID, cmd.MaxTextModels, cmd.MaxImageModels}, scanTenant)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrManaged
	}
	if err != nil {
		return nil, fmt.Errorf("update tenant %s: %w", classID, err)
	}

	r.logger.Info("tenant limits updated",
		"id", t.ID,
		"max_text_models", t.MaxTextModels,
		"max_image_models", t.MaxImageModels,
	)
	return &t, nil
}
