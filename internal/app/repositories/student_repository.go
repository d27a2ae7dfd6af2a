package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/db"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/dberrors"
	"github.com/Azechum30/npresec-app/internal/pkg/indexnumber"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// maxIndexAttempts bounds how many sequence values are skipped when they collide with manual index numbers
const maxIndexAttempts = 20

var studentColumns = []string{
	"id", "index_number", "first_name", "middle_name", "last_name", "email", "phone", "gender", "date_of_birth",
	"address", "guardian_name", "guardian_phone", "class_id", "department_id", "admission_date", "status",
	"user_id", "created_at", "updated_at",
}

var studentSorts = map[string]string{
	"lastName":      "last_name",
	"firstName":     "first_name",
	"indexNumber":   "index_number",
	"admissionDate": "admission_date",
	"createdAt":     "created_at",
}

// StudentRepository handles database operations for students
type StudentRepository struct {
	table
	index indexnumber.Generator
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(pool db.Pool, index indexnumber.Generator) *StudentRepository {
	t := newTable(pool, "students", "student", apperrors.ErrStudentNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"students_index_number_key": {Field: "indexNumber", Label: "index number"},
		"students_email_key":        {Field: "email", Label: "email"},
		"students_phone_key":        {Field: "phone", Label: "phone number"},
		"students_user_id_key":      {Field: "userId", Label: "user account"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"indexNumber": {Column: "index_number"},
		"email":       {Column: "email", Fold: true},
		"phone":       {Column: "phone"},
		"userId":      {Column: "user_id"},
	}
	return &StudentRepository{table: t, index: index}
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	q := r.sb.Select(studentColumns...).From(r.name).Where(squirrel.Eq{"id": id})
	return queryOne[models.Student](ctx, r.db, q, r.notFound)
}

func (r *StudentRepository) listOptions(q dto.StudentListQuery) listOptions {
	o := newListOptions(q.ListQuery, studentSorts, "lastName",
		"index_number", "first_name", "middle_name", "last_name", "email", "guardian_name")
	if q.ClassID != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"class_id": *q.ClassID})
	}
	if q.DepartmentID != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"department_id": *q.DepartmentID})
	}
	if q.Gender != "" {
		o.Filters = append(o.Filters, squirrel.Eq{"gender": q.Gender})
	}
	if q.Status != "" {
		o.Filters = append(o.Filters, squirrel.Eq{"status": q.Status})
	}
	if q.AdmissionYear != nil {
		from := time.Date(*q.AdmissionYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		o.Filters = append(o.Filters,
			squirrel.GtOrEq{"admission_date": from},
			squirrel.Lt{"admission_date": from.AddDate(1, 0, 0)})
	}
	return o
}

// List returns one page of students and the total match count
func (r *StudentRepository) List(ctx context.Context, q dto.StudentListQuery) ([]*models.Student, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	return listRecords[models.Student](ctx, r.db,
		r.sb.Select(studentColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
}

// ListAll returns up to limit students matching q, for export
func (r *StudentRepository) ListAll(ctx context.Context, q dto.StudentListQuery, limit int) ([]*models.Student, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Student](ctx, r.db,
		r.sb.Select(studentColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	return items, err
}

// Create inserts a student. An empty IndexNumber is generated from the admission year's
// sequence in the same transaction, so a failed insert rolls the sequence back.
// A class at capacity rejects the student.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	generated := s.IndexNumber == ""
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if s.ClassID != nil {
			if err := r.reserveSeat(ctx, tx, *s.ClassID); err != nil {
				return err
			}
		}
		if s.IndexNumber == "" {
			index, err := r.nextIndexNumber(ctx, tx, s.AdmissionDate.Year())
			if err != nil {
				return err
			}
			s.IndexNumber = index
		}

		q := r.sb.Insert(r.name).
			Columns("index_number", "first_name", "middle_name", "last_name", "email", "phone", "gender",
				"date_of_birth", "address", "guardian_name", "guardian_phone", "class_id", "department_id",
				"admission_date", "status", "user_id").
			Values(s.IndexNumber, s.FirstName, s.MiddleName, s.LastName, s.Email, s.Phone, s.Gender,
				s.DateOfBirth, s.Address, s.GuardianName, s.GuardianPhone, s.ClassID, s.DepartmentID,
				s.AdmissionDate, s.Status, s.UserID).
			Suffix("RETURNING " + joinColumns(studentColumns))

		created, err := queryOne[models.Student](ctx, tx, q, r.notFound)
		if err != nil {
			return err
		}
		*s = *created
		return nil
	})
	if err != nil {
		if generated {
			s.IndexNumber = ""
		}
		return r.translate(err, false)
	}
	return nil
}

// nextIndexNumber advances the year's counter until it yields an unused index number
func (r *StudentRepository) nextIndexNumber(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	sql, args, err := r.sb.Insert("student_index_sequences").
		Columns("year", "last_value").
		Values(year, 1).
		Suffix("ON CONFLICT (year) DO UPDATE SET last_value = student_index_sequences.last_value + 1 RETURNING last_value").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build index sequence query: %w", err)
	}

	for attempt := 0; attempt < maxIndexAttempts; attempt++ {
		var seq int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&seq); err != nil {
			return "", fmt.Errorf("failed to advance index sequence: %w", err)
		}

		index := r.index.Format(year, seq)
		taken, err := r.indexTaken(ctx, tx, index)
		if err != nil {
			return "", err
		}
		if !taken {
			return index, nil
		}
		logger.Warn().Str("indexNumber", index).Msg("Generated index number already in use, skipping")
	}
	return "", fmt.Errorf("could not allocate an index number for %d after %d attempts", year, maxIndexAttempts)
}

// reserveSeat locks the class row so concurrent placements into it are serialised,
// then counts its students against the capacity
func (r *StudentRepository) reserveSeat(ctx context.Context, tx pgx.Tx, classID int64) error {
	sql, args, err := r.sb.Select("capacity").From("classes").
		Where(squirrel.Eq{"id": classID}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build class lock query: %w", err)
	}
	var capacity *int
	if err := tx.QueryRow(ctx, sql, args...).Scan(&capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidReferenceError("classId", "The selected class does not exist")
		}
		return fmt.Errorf("failed to lock class: %w", err)
	}
	if capacity == nil {
		return nil
	}

	sql, args, err = r.sb.Select("COUNT(*)").From(r.name).Where(squirrel.Eq{"class_id": classID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build enrolment query: %w", err)
	}
	var enrolled int
	if err := tx.QueryRow(ctx, sql, args...).Scan(&enrolled); err != nil {
		return fmt.Errorf("failed to count class students: %w", err)
	}
	if enrolled >= *capacity {
		return apperrors.NewValidationError("classId", "The selected class is full")
	}
	return nil
}

// currentClass locks the student row and returns its class
func (r *StudentRepository) currentClass(ctx context.Context, tx pgx.Tx, id int64) (classID *int64, found bool, err error) {
	sql, args, err := r.sb.Select("class_id").From(r.name).
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build student lock query: %w", err)
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&classID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to lock student: %w", err)
	}
	return classID, true, nil
}

func (r *StudentRepository) indexTaken(ctx context.Context, tx pgx.Tx, index string) (bool, error) {
	sql, args, err := r.sb.Select("1").From(r.name).Where(squirrel.Eq{"index_number": index}).
		Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var taken bool
	if err := tx.QueryRow(ctx, sql, args...).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check index number: %w", err)
	}
	return taken, nil
}

// Update saves s; a non-nil expected enforces the optimistic lock.
// Moving the student into another class checks that class's capacity.
func (r *StudentRepository) Update(ctx context.Context, s *models.Student, expected *time.Time) error {
	q := r.sb.Update(r.name).
		SetMap(map[string]interface{}{
			"index_number":   s.IndexNumber,
			"first_name":     s.FirstName,
			"middle_name":    s.MiddleName,
			"last_name":      s.LastName,
			"email":          s.Email,
			"phone":          s.Phone,
			"gender":         s.Gender,
			"date_of_birth":  s.DateOfBirth,
			"address":        s.Address,
			"guardian_name":  s.GuardianName,
			"guardian_phone": s.GuardianPhone,
			"class_id":       s.ClassID,
			"department_id":  s.DepartmentID,
			"admission_date": s.AdmissionDate,
			"status":         s.Status,
			"user_id":        s.UserID,
			"updated_at":     squirrel.Expr("NOW()"),
		}).
		Where(versionCond(s.ID, expected)).
		Suffix("RETURNING " + joinColumns(studentColumns))

	var updated *models.Student
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		current, found, err := r.currentClass(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		if found && s.ClassID != nil && (current == nil || *current != *s.ClassID) {
			if err := r.reserveSeat(ctx, tx, *s.ClassID); err != nil {
				return err
			}
		}

		updated, err = queryOne[models.Student](ctx, tx, q, errNoRows)
		return err
	})
	if errors.Is(err, errNoRows) {
		return r.resolveNoRows(ctx, s.ID, expected)
	}
	if err != nil {
		return r.translate(err, false)
	}
	*s = *updated
	return nil
}
