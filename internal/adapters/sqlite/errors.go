package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/tenth-speed-writer/PFLTK/internal/apperr"
)

// classify maps driver constraint violations onto error kinds. Anything
// else is wrapped as-is.
func classify(err error, format string, args ...any) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return apperr.Wrap(apperr.AlreadyExists, err, format, args...)
		case sqlite3.ErrConstraintForeignKey:
			return apperr.Wrap(apperr.ReferentialIntegrity, err, format, args...)
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return apperr.Wrap(apperr.InvalidArgument, err, format, args...)
		}
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// latestWarNumber returns the highest war number and whether any war exists.
func latestWarNumber(ctx context.Context, exec DBTX) (int, bool, error) {
	var n int
	err := exec.QueryRowContext(ctx, "SELECT war_number FROM wars ORDER BY war_number DESC LIMIT 1").Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get latest war number: %w", err)
	}
	return n, true, nil
}
