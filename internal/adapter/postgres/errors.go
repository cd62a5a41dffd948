package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// Classify maps driver errors onto apperr classes. Anything else is returned as is
// and surfaces as a remote failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation, codeUniqueViolation, codeCheckViolation:
			return fmt.Errorf("%w: %s", apperr.ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}
