package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
)

const (
	advanceSequence = `INSERT INTO student_index_sequences .* RETURNING last_value`
	indexTakenQuery = `SELECT 1 FROM students WHERE index_number = \$1`
	insertStudent   = `INSERT INTO students `
	lockClass       = `SELECT capacity FROM classes WHERE id = \$1 FOR UPDATE`
	countEnrolled   = `SELECT COUNT\(\*\) FROM students WHERE class_id = \$1`
	lockStudent     = `SELECT class_id FROM students WHERE id = \$1 FOR UPDATE`
	updateStudent   = `UPDATE students SET `
)

func newStudent(classID *int64) *models.Student {
	return &models.Student{
		FirstName:     "Ama",
		LastName:      "Mensah",
		Gender:        models.GenderFemale,
		ClassID:       classID,
		AdmissionDate: time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC),
		Status:        models.StudentActive,
	}
}

func sequenceRow(v int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"last_value"}).AddRow(v)
}

func existsRow(v bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"exists"}).AddRow(v)
}

func TestStudentCreate_SkipsManualIndexNumbers(t *testing.T) {
	mock := newMockPool(t)
	repo := NewStudentRepository(mock, testIndex)

	mock.ExpectBegin()
	mock.ExpectQuery(advanceSequence).WithArgs(2025, 1).WillReturnRows(sequenceRow(7))
	mock.ExpectQuery(indexTakenQuery).WithArgs("NPR250007").WillReturnRows(existsRow(true))
	mock.ExpectQuery(advanceSequence).WithArgs(2025, 1).WillReturnRows(sequenceRow(8))
	mock.ExpectQuery(indexTakenQuery).WithArgs("NPR250008").WillReturnRows(existsRow(false))
	mock.ExpectQuery(insertStudent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "index_number"}).AddRow(int64(11), "NPR250008"))
	mock.ExpectCommit()

	st := newStudent(nil)
	require.NoError(t, repo.Create(context.Background(), st))
	assert.Equal(t, int64(11), st.ID)
	assert.Equal(t, "NPR250008", st.IndexNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreate_FailedInsertRollsBackSequence(t *testing.T) {
	mock := newMockPool(t)
	repo := NewStudentRepository(mock, testIndex)

	mock.ExpectBegin()
	mock.ExpectQuery(advanceSequence).WillReturnRows(sequenceRow(3))
	mock.ExpectQuery(indexTakenQuery).WillReturnRows(existsRow(false))
	mock.ExpectQuery(insertStudent).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "students_email_key"})
	mock.ExpectRollback()

	st := newStudent(nil)
	err := repo.Create(context.Background(), st)

	var dup *apperrors.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Contains(t, dup.Fields, "email")
	assert.Empty(t, st.IndexNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreate_GivenIndexNumberSkipsSequence(t *testing.T) {
	mock := newMockPool(t)
	repo := NewStudentRepository(mock, testIndex)

	mock.ExpectBegin()
	mock.ExpectQuery(insertStudent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "index_number"}).AddRow(int64(12), "NPR259999"))
	mock.ExpectCommit()

	st := newStudent(nil)
	st.IndexNumber = "NPR259999"
	require.NoError(t, repo.Create(context.Background(), st))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreate_ClassCapacity(t *testing.T) {
	classID := int64(4)

	tests := []struct {
		name     string
		capacity *int
		enrolled int
		wantErr  bool
	}{
		{"seat free", ptrTo(30), 29, false},
		{"class full", ptrTo(30), 30, true},
		{"no limit", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			repo := NewStudentRepository(mock, testIndex)

			mock.ExpectBegin()
			mock.ExpectQuery(lockClass).WithArgs(classID).
				WillReturnRows(pgxmock.NewRows([]string{"capacity"}).AddRow(tt.capacity))
			if tt.capacity != nil {
				mock.ExpectQuery(countEnrolled).WithArgs(classID).
					WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(tt.enrolled))
			}
			if tt.wantErr {
				mock.ExpectRollback()
			} else {
				mock.ExpectQuery(insertStudent).
					WillReturnRows(pgxmock.NewRows([]string{"id", "index_number"}).AddRow(int64(1), "NPR250001"))
				mock.ExpectCommit()
			}

			st := newStudent(&classID)
			st.IndexNumber = "NPR250001"
			err := repo.Create(context.Background(), st)
			if !tt.wantErr {
				require.NoError(t, err)
			} else {
				var ce *apperrors.CustomError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, "classId", ce.Field)
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStudentUpdate(t *testing.T) {
	stamp := time.Date(2025, time.October, 1, 9, 0, 0, 0, time.UTC)
	classA, classB := int64(4), int64(5)

	t.Run("moving into a full class", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewStudentRepository(mock, testIndex)

		mock.ExpectBegin()
		mock.ExpectQuery(lockStudent).WithArgs(int64(11)).
			WillReturnRows(pgxmock.NewRows([]string{"class_id"}).AddRow(&classA))
		mock.ExpectQuery(lockClass).WithArgs(classB).
			WillReturnRows(pgxmock.NewRows([]string{"capacity"}).AddRow(ptrTo(2)))
		mock.ExpectQuery(countEnrolled).WithArgs(classB).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectRollback()

		st := newStudent(&classB)
		st.ID, st.IndexNumber = 11, "NPR250008"
		err := repo.Update(context.Background(), st, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("same class skips the capacity check", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewStudentRepository(mock, testIndex)

		mock.ExpectBegin()
		mock.ExpectQuery(lockStudent).WithArgs(int64(11)).
			WillReturnRows(pgxmock.NewRows([]string{"class_id"}).AddRow(&classA))
		mock.ExpectQuery(updateStudent).
			WillReturnRows(pgxmock.NewRows([]string{"id", "index_number"}).AddRow(int64(11), "NPR250008"))
		mock.ExpectCommit()

		st := newStudent(&classA)
		st.ID, st.IndexNumber = 11, "NPR250008"
		require.NoError(t, repo.Update(context.Background(), st, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewStudentRepository(mock, testIndex)

		mock.ExpectBegin()
		mock.ExpectQuery(lockStudent).WithArgs(int64(11)).
			WillReturnRows(pgxmock.NewRows([]string{"class_id"}).AddRow((*int64)(nil)))
		mock.ExpectQuery(updateStudent).WillReturnRows(pgxmock.NewRows([]string{"id", "index_number"}))
		mock.ExpectRollback()
		mock.ExpectQuery(`SELECT EXISTS\(\s*SELECT 1 FROM students WHERE id = \$1`).WithArgs(int64(11)).
			WillReturnRows(existsRow(true))

		st := newStudent(nil)
		st.ID, st.IndexNumber = 11, "NPR250008"
		err := repo.Update(context.Background(), st, &stamp)
		assert.ErrorIs(t, err, apperrors.ErrStaleRecord)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
