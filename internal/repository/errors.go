package repository

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == uniqueViolation
}

// mapError translates driver errors into domain errors. notFound is returned
// for pgx.ErrNoRows.
func mapError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows) && notFound != nil:
		return notFound
	case isUniqueViolation(err):
		return domain.ErrAlreadyBooked
	case pgCode(err) == foreignKeyViolation:
		return domain.ErrUnknownTable
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
}
