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

var classColumns = []string{
	"id", "name", "code", "level", "department_id", "class_teacher_id", "capacity", "created_at", "updated_at",
}

var classSelect = append(qualify("classes", classColumns),
	"(SELECT COUNT(*) FROM students s WHERE s.class_id = classes.id) AS student_count")

var classSorts = map[string]string{
	"name":      "classes.name",
	"code":      "classes.code",
	"level":     "classes.level",
	"createdAt": "classes.created_at",
}

// ClassRepository handles database operations for classes
type ClassRepository struct {
	table
}

// NewClassRepository creates a new class repository
func NewClassRepository(pool db.Pool) *ClassRepository {
	t := newTable(pool, "classes", "class", apperrors.ErrClassNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"classes_name_key": {Field: "name", Label: "name"},
		"classes_code_key": {Field: "code", Label: "code"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"name": {Column: "name", Fold: true},
		"code": {Column: "code", Fold: true},
	}
	return &ClassRepository{table: t}
}

// GetByID retrieves a class with its student count
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	q := r.sb.Select(classSelect...).From(r.name).Where(squirrel.Eq{"classes.id": id})
	return queryOne[models.Class](ctx, r.db, q, r.notFound)
}

func (r *ClassRepository) listOptions(q dto.ClassListQuery) listOptions {
	o := newListOptions(q.ListQuery, classSorts, "name", "classes.name", "classes.code")
	if q.DepartmentID != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"classes.department_id": *q.DepartmentID})
	}
	if q.Level != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"classes.level": *q.Level})
	}
	return o
}

// List returns one page of classes and the total match count
func (r *ClassRepository) List(ctx context.Context, q dto.ClassListQuery) ([]*models.Class, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	return listRecords[models.Class](ctx, r.db,
		r.sb.Select(classSelect...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "classes.id", o)
}

// ListAll returns up to limit classes matching q, for export
func (r *ClassRepository) ListAll(ctx context.Context, q dto.ClassListQuery, limit int) ([]*models.Class, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Class](ctx, r.db,
		r.sb.Select(classSelect...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "classes.id", o)
	return items, err
}

// Create inserts a class
func (r *ClassRepository) Create(ctx context.Context, c *models.Class) error {
	q := r.sb.Insert(r.name).
		Columns("name", "code", "level", "department_id", "class_teacher_id", "capacity").
		Values(c.Name, c.Code, c.Level, c.DepartmentID, c.ClassTeacherID, c.Capacity).
		Suffix("RETURNING " + joinColumns(classColumns))

	created, err := queryOne[models.Class](ctx, r.db, q, r.notFound)
	if err != nil {
		return r.translate(err, false)
	}
	*c = *created
	return nil
}

// Update saves c; a non-nil expected enforces the optimistic lock
func (r *ClassRepository) Update(ctx context.Context, c *models.Class, expected *time.Time) error {
	q := r.sb.Update(r.name).
		Set("name", c.Name).
		Set("code", c.Code).
		Set("level", c.Level).
		Set("department_id", c.DepartmentID).
		Set("class_teacher_id", c.ClassTeacherID).
		Set("capacity", c.Capacity).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(versionCond(c.ID, expected)).
		Suffix("RETURNING " + joinColumns(classColumns))

	updated, err := queryOne[models.Class](ctx, r.db, q, errNoRows)
	if errors.Is(err, errNoRows) {
		return r.resolveNoRows(ctx, c.ID, expected)
	}
	if err != nil {
		return r.translate(err, false)
	}
	*c = *updated
	c.StudentCount, err = r.CountStudents(ctx, c.ID)
	return err
}

// CountStudents returns how many students are placed in the class
func (r *ClassRepository) CountStudents(ctx context.Context, classID int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("students").Where(squirrel.Eq{"class_id": classID}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
