package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/db"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/dberrors"
)

var teacherColumns = []string{
	"id", "employee_id", "first_name", "last_name", "email", "phone", "gender", "date_of_birth", "qualification",
	"specialization", "department_id", "hire_date", "status", "user_id", "created_at", "updated_at",
}

var teacherSorts = map[string]string{
	"lastName":   "last_name",
	"firstName":  "first_name",
	"employeeId": "employee_id",
	"hireDate":   "hire_date",
	"createdAt":  "created_at",
}

// TeacherRepository handles database operations for teachers
type TeacherRepository struct {
	table
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(pool db.Pool) *TeacherRepository {
	t := newTable(pool, "teachers", "teacher", apperrors.ErrTeacherNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"teachers_employee_id_key": {Field: "employeeId", Label: "employee ID"},
		"teachers_email_key":       {Field: "email", Label: "email"},
		"teachers_phone_key":       {Field: "phone", Label: "phone number"},
		"teachers_user_id_key":     {Field: "userId", Label: "user account"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"employeeId": {Column: "employee_id", Fold: true},
		"email":      {Column: "email", Fold: true},
		"phone":      {Column: "phone"},
		"userId":     {Column: "user_id"},
	}
	return &TeacherRepository{table: t}
}

// GetByID retrieves a teacher with the ids of the courses they teach
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	q := r.sb.Select(teacherColumns...).From(r.name).Where(squirrel.Eq{"id": id})
	teacher, err := queryOne[models.Teacher](ctx, r.db, q, r.notFound)
	if err != nil {
		return nil, err
	}
	return teacher, r.attachCourses(ctx, []*models.Teacher{teacher})
}

func (r *TeacherRepository) listOptions(q dto.TeacherListQuery) listOptions {
	o := newListOptions(q.ListQuery, teacherSorts, "lastName", "employee_id", "first_name", "last_name", "email")
	if q.DepartmentID != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"department_id": *q.DepartmentID})
	}
	if q.Status != "" {
		o.Filters = append(o.Filters, squirrel.Eq{"status": q.Status})
	}
	return o
}

// List returns one page of teachers and the total match count
func (r *TeacherRepository) List(ctx context.Context, q dto.TeacherListQuery) ([]*models.Teacher, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	items, total, err := listRecords[models.Teacher](ctx, r.db,
		r.sb.Select(teacherColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	if err != nil {
		return nil, 0, err
	}
	return items, total, r.attachCourses(ctx, items)
}

// ListAll returns up to limit teachers matching q, for export
func (r *TeacherRepository) ListAll(ctx context.Context, q dto.TeacherListQuery, limit int) ([]*models.Teacher, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Teacher](ctx, r.db,
		r.sb.Select(teacherColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	if err != nil {
		return nil, err
	}
	return items, r.attachCourses(ctx, items)
}

// Create inserts a teacher
func (r *TeacherRepository) Create(ctx context.Context, t *models.Teacher) error {
	q := r.sb.Insert(r.name).
		Columns("employee_id", "first_name", "last_name", "email", "phone", "gender", "date_of_birth",
			"qualification", "specialization", "department_id", "hire_date", "status", "user_id").
		Values(t.EmployeeID, t.FirstName, t.LastName, t.Email, t.Phone, t.Gender, t.DateOfBirth,
			t.Qualification, t.Specialization, t.DepartmentID, t.HireDate, t.Status, t.UserID).
		Suffix("RETURNING " + joinColumns(teacherColumns))

	created, err := queryOne[models.Teacher](ctx, r.db, q, r.notFound)
	if err != nil {
		return r.translate(err, false)
	}
	created.CourseIDs = []int64{}
	*t = *created
	return nil
}

// Update saves t; a non-nil expected enforces the optimistic lock
func (r *TeacherRepository) Update(ctx context.Context, t *models.Teacher, expected *time.Time) error {
	q := r.sb.Update(r.name).
		SetMap(map[string]interface{}{
			"employee_id":    t.EmployeeID,
			"first_name":     t.FirstName,
			"last_name":      t.LastName,
			"email":          t.Email,
			"phone":          t.Phone,
			"gender":         t.Gender,
			"date_of_birth":  t.DateOfBirth,
			"qualification":  t.Qualification,
			"specialization": t.Specialization,
			"department_id":  t.DepartmentID,
			"hire_date":      t.HireDate,
			"status":         t.Status,
			"user_id":        t.UserID,
			"updated_at":     squirrel.Expr("NOW()"),
		}).
		Where(versionCond(t.ID, expected)).
		Suffix("RETURNING " + joinColumns(teacherColumns))

	updated, err := queryOne[models.Teacher](ctx, r.db, q, errNoRows)
	if errors.Is(err, errNoRows) {
		return r.resolveNoRows(ctx, t.ID, expected)
	}
	if err != nil {
		return r.translate(err, false)
	}
	*t = *updated
	return r.attachCourses(ctx, []*models.Teacher{t})
}

func (r *TeacherRepository) attachCourses(ctx context.Context, teachers []*models.Teacher) error {
	courses, err := loadLinks(ctx, r.db, r.sb, "course_teachers", "teacher_id", "course_id",
		idsOf(teachers, func(t *models.Teacher) int64 { return t.ID }))
	if err != nil {
		return err
	}
	for _, t := range teachers {
		t.CourseIDs = nonNil(courses[t.ID])
	}
	return nil
}
