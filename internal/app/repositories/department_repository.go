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

var departmentColumns = []string{"id", "name", "code", "description", "head_teacher_id", "created_at", "updated_at"}

var departmentSorts = map[string]string{
	"name":      "name",
	"code":      "code",
	"createdAt": "created_at",
}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	table
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(pool db.Pool) *DepartmentRepository {
	t := newTable(pool, "departments", "department", apperrors.ErrDepartmentNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"departments_name_key": {Field: "name", Label: "name"},
		"departments_code_key": {Field: "code", Label: "code"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"name": {Column: "name", Fold: true},
		"code": {Column: "code", Fold: true},
	}
	return &DepartmentRepository{table: t}
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	q := r.sb.Select(departmentColumns...).From(r.name).Where(squirrel.Eq{"id": id})
	return queryOne[models.Department](ctx, r.db, q, r.notFound)
}

func (r *DepartmentRepository) listOptions(q dto.DepartmentListQuery) listOptions {
	return newListOptions(q.ListQuery, departmentSorts, "name", "name", "code")
}

// List returns one page of departments and the total match count
func (r *DepartmentRepository) List(ctx context.Context, q dto.DepartmentListQuery) ([]*models.Department, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	return listRecords[models.Department](ctx, r.db,
		r.sb.Select(departmentColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
}

// ListAll returns up to limit departments matching q, for export
func (r *DepartmentRepository) ListAll(ctx context.Context, q dto.DepartmentListQuery, limit int) ([]*models.Department, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Department](ctx, r.db,
		r.sb.Select(departmentColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	return items, err
}

// Create inserts a department and fills in the generated fields
func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	q := r.sb.Insert(r.name).
		Columns("name", "code", "description", "head_teacher_id").
		Values(d.Name, d.Code, d.Description, d.HeadTeacherID).
		Suffix("RETURNING " + joinColumns(departmentColumns))

	created, err := queryOne[models.Department](ctx, r.db, q, r.notFound)
	if err != nil {
		return r.translate(err, false)
	}
	*d = *created
	return nil
}

// Update saves d; a non-nil expected enforces the optimistic lock
func (r *DepartmentRepository) Update(ctx context.Context, d *models.Department, expected *time.Time) error {
	q := r.sb.Update(r.name).
		Set("name", d.Name).
		Set("code", d.Code).
		Set("description", d.Description).
		Set("head_teacher_id", d.HeadTeacherID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(versionCond(d.ID, expected)).
		Suffix("RETURNING " + joinColumns(departmentColumns))

	updated, err := queryOne[models.Department](ctx, r.db, q, errNoRows)
	if errors.Is(err, errNoRows) {
		return r.resolveNoRows(ctx, d.ID, expected)
	}
	if err != nil {
		return r.translate(err, false)
	}
	*d = *updated
	return nil
}
