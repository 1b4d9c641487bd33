package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify turns a gorm/driver error into the application taxonomy. No
// storage error leaves this package unclassified.
func classify(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(entity, id)
	case isUniqueViolation(err):
		return apperrors.NewConflictError(err, fmt.Sprintf("%s %q already exists", entity, id)).
			WithContext("entity", entity)
	case isForeignKeyViolation(err):
		return apperrors.NewConflictError(err, fmt.Sprintf("%s %q is still referenced", entity, id)).
			WithContext("entity", entity)
	default:
		return apperrors.NewDatabaseError(err).
			WithContext("entity", entity).
			WithContext("id", id)
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		pgCode(err) == pgUniqueViolation ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) ||
		pgCode(err) == pgForeignKeyViolation ||
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// escapeLike escapes LIKE wildcards so user input matches literally. Pair
// with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
