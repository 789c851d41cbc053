package repositories

import (
	"errors"

	"dungji/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrGroupBuyFull is returned by Join when no seat is left.
var ErrGroupBuyFull = errors.New("group buy is full")

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError turns storage integrity violations into validation errors on
// field. Other errors are returned unchanged.
func translateError(err error, field string) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return apperr.NewValidation(field, "already exists")
	case isForeignKeyViolation(err):
		return apperr.NewValidation(field, "references a missing record or is still referenced")
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
