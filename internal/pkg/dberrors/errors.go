package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
)

// PostgreSQL error codes the application reacts to
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// UniqueField describes which request field a unique constraint protects
type UniqueField struct {
	Field string
	Label string
}

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation && pgErr.ConstraintName == constraintName
}

// IsUniqueViolation reports any unique violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}

// IsForeignKeyViolation reports any foreign key violation
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeForeignKeyViolation
}

// ConstraintName returns the violated constraint, or "" for non-pg errors
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// Translate converts constraint violations into application errors.
// Unique violations whose constraint is listed in unique become a DuplicateError naming
// the field; unlisted ones become a generic duplicate. Foreign key violations on insert
// or update become ErrInvalidReference, on delete ErrHasRelations. Other errors pass through.
func Translate(err error, entity string, unique map[string]UniqueField, deleting bool) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		dup := apperrors.NewDuplicateError(entity)
		if f, ok := unique[pgErr.ConstraintName]; ok {
			dup.Add(f.Field, f.Label)
		} else {
			dup.Fields["record"] = "A " + entity + " with these details already exists"
		}
		return dup
	case CodeForeignKeyViolation:
		if deleting {
			return apperrors.NewCustomError(apperrors.ErrHasRelations,
				"This "+entity+" is still referenced by other records and cannot be deleted")
		}
		return apperrors.NewCustomError(apperrors.ErrInvalidReference,
			"A record referenced by this "+entity+" does not exist")
	}
	return err
}
