package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ErrorMap names the domain errors a repository reports for the
// driver-level failures it can recognise. A nil entry leaves that failure
// unchanged.
type ErrorMap struct {
	// NotFound replaces sql.ErrNoRows.
	NotFound error
	// Duplicate replaces unique constraint violations.
	Duplicate error
	// InUse replaces foreign key violations, raised when a row is still
	// referenced by a RESTRICT constraint.
	InUse error
}

// Map translates err into the configured domain error.
func (m ErrorMap) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && m.NotFound != nil {
		return m.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgUniqueViolation && m.Duplicate != nil:
		return m.Duplicate
	case pgErr.Code == pgForeignKeyViolation && m.InUse != nil:
		return m.InUse
	}

	return err
}
