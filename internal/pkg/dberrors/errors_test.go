package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
)

var studentUnique = map[string]UniqueField{
	"students_email_key": {Field: "email", Label: "email"},
}

func TestTranslate_UniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "students_email_key"})

	got := Translate(err, "student", studentUnique, false)

	var dup *apperrors.DuplicateError
	require.True(t, errors.As(got, &dup))
	assert.Equal(t, "A student with this email already exists", dup.Fields["email"])
	assert.ErrorIs(t, got, apperrors.ErrResourceAlreadyExists)
}

func TestTranslate_UnknownConstraint(t *testing.T) {
	got := Translate(&pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "other"}, "student", studentUnique, false)

	var dup *apperrors.DuplicateError
	require.True(t, errors.As(got, &dup))
	assert.Contains(t, dup.Fields, "record")
}

func TestTranslate_ForeignKey(t *testing.T) {
	fk := &pgconn.PgError{Code: CodeForeignKeyViolation}

	assert.ErrorIs(t, Translate(fk, "class", nil, true), apperrors.ErrHasRelations)
	assert.ErrorIs(t, Translate(fk, "class", nil, false), apperrors.ErrInvalidReference)
}

func TestTranslate_PassThrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Translate(plain, "x", nil, false))
	assert.False(t, IsUniqueViolation(plain))
	assert.Equal(t, "", ConstraintName(plain))
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_email_key"}
	assert.True(t, IsDuplicateConstraintError(err, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(err, "users_username_key"))
}
