package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/pkg/pagination"
	"github.com/JaimeStill/lyceum/pkg/query"
	"github.com/JaimeStill/lyceum/pkg/repository"
)

var errs = repository.ErrorMap{NotFound: ErrNotFound, InUse: ErrInUse}

type repo struct {
	db         *sql.DB
	ledger     Ledger
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the PostgreSQL credential store. Exhaustion is tracked in
// ledger.
func New(db *sql.DB, ledger Ledger, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		ledger:     ledger,
		logger:     logger.With("system", "credentials"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	classID string,
	serviceType *ServiceType,
	page pagination.PageRequest,
) (*pagination.PageResult[Credentials], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, storedOrder...).
		WhereEquals("ClassID", classID)

	if serviceType != nil {
		qb.WhereEquals("ServiceType", *serviceType)
	}

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryScalar[int](ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count credentials: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCredentials)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Credentials, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO credentials(id, class_id, service_type, url, username, password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + returning

	args := []any{uuid.New(), cmd.ClassID, cmd.ServiceType, cmd.URL, cmd.Username, cmd.Password}

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCredentials)
	if err != nil {
		return nil, errs.Map(err)
	}

	r.logger.Info("credentials added", "id", c.ID, "class", c.ClassID, "service", c.ServiceType)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, classID string, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM credentials WHERE id = $1 AND class_id = $2",
		id, classID,
	)
	if err != nil {
		return errs.Map(err)
	}

	r.logger.Info("credentials deleted", "id", id, "class", classID)
	return nil
}

func (r *repo) Resolve(ctx context.Context, classID string, serviceType ServiceType, id uuid.UUID) (*Credentials, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("ClassID", classID).
		WhereEquals("ServiceType", serviceType).
		BuildFirst()

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCredentials)
	if err != nil {
		return nil, errs.Map(err)
	}
	return &c, nil
}

func (r *repo) Candidates(ctx context.Context, classID string, serviceType ServiceType) ([]Candidate, error) {
	q, args := query.NewBuilder(projection, storedOrder...).
		WhereEquals("ClassID", classID).
		WhereEquals("ServiceType", serviceType).
		Build()

	stored, err := repository.QueryMany(ctx, r.db, q, args, scanCredentials)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}

	ids := make([]uuid.UUID, len(stored))
	for i, c := range stored {
		ids[i] = c.ID
	}

	exhausted, err := r.ledger.Exhausted(ctx, ids)
	if err != nil {
		r.logger.Warn("exhaustion ledger unavailable, treating all credentials as usable", "error", err)
		exhausted = nil
	}

	cands := make([]Candidate, len(stored))
	for i, c := range stored {
		cands[i] = Candidate{Credentials: c, Exhausted: exhausted[c.ID]}
	}
	return cands, nil
}

func (r *repo) MarkExhausted(ctx context.Context, id uuid.UUID) error {
	if err := r.ledger.Mark(ctx, id); err != nil {
		return fmt.Errorf("mark credentials %s exhausted: %w", id, err)
	}
	r.logger.Info("credentials marked exhausted", "id", id)
	return nil
}
