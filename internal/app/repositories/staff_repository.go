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

var staffColumns = []string{
	"id", "employee_id", "first_name", "last_name", "email", "phone", "gender", "position", "department_id",
	"hire_date", "status", "user_id", "created_at", "updated_at",
}

var staffSorts = map[string]string{
	"lastName":   "last_name",
	"firstName":  "first_name",
	"employeeId": "employee_id",
	"position":   "position",
	"hireDate":   "hire_date",
	"createdAt":  "created_at",
}

// StaffRepository handles database operations for non-teaching staff
type StaffRepository struct {
	table
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(pool db.Pool) *StaffRepository {
	t := newTable(pool, "staff", "staff member", apperrors.ErrStaffNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"staff_employee_id_key": {Field: "employeeId", Label: "employee ID"},
		"staff_email_key":       {Field: "email", Label: "email"},
		"staff_phone_key":       {Field: "phone", Label: "phone number"},
		"staff_user_id_key":     {Field: "userId", Label: "user account"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"employeeId": {Column: "employee_id", Fold: true},
		"email":      {Column: "email", Fold: true},
		"phone":      {Column: "phone"},
		"userId":     {Column: "user_id"},
	}
	return &StaffRepository{table: t}
}

// GetByID retrieves a staff member by ID
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	q := r.sb.Select(staffColumns...).From(r.name).Where(squirrel.Eq{"id": id})
	return queryOne[models.Staff](ctx, r.db, q, r.notFound)
}

func (r *StaffRepository) listOptions(q dto.StaffListQuery) listOptions {
	o := newListOptions(q.ListQuery, staffSorts, "lastName", "employee_id", "first_name", "last_name", "email", "position")
	if q.DepartmentID != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"department_id": *q.DepartmentID})
	}
	if q.Position != "" {
		o.Filters = append(o.Filters, squirrel.ILike{"position": likeEscaper.Replace(q.Position)})
	}
	if q.Status != "" {
		o.Filters = append(o.Filters, squirrel.Eq{"status": q.Status})
	}
	return o
}

// List returns one page of staff and the total match count
func (r *StaffRepository) List(ctx context.Context, q dto.StaffListQuery) ([]*models.Staff, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	return listRecords[models.Staff](ctx, r.db,
		r.sb.Select(staffColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
}

// ListAll returns up to limit staff matching q, for export
func (r *StaffRepository) ListAll(ctx context.Context, q dto.StaffListQuery, limit int) ([]*models.Staff, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Staff](ctx, r.db,
		r.sb.Select(staffColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	return items, err
}

// Create inserts a staff member
func (r *StaffRepository) Create(ctx context.Context, s *models.Staff) error {
	q := r.sb.Insert(r.name).
		Columns("employee_id", "first_name", "last_name", "email", "phone", "gender", "position",
			"department_id", "hire_date", "status", "user_id").
		Values(s.EmployeeID, s.FirstName, s.LastName, s.Email, s.Phone, s.Gender, s.Position,
			s.DepartmentID, s.HireDate, s.Status, s.UserID).
		Suffix("RETURNING " + joinColumns(staffColumns))

	created, err := queryOne[models.Staff](ctx, r.db, q, r.notFound)
	if err != nil {
		return r.translate(err, false)
	}
	*s = *created
	return nil
}

// Update saves s; a non-nil expected enforces the optimistic lock
func (r *StaffRepository) Update(ctx context.Context, s *models.Staff, expected *time.Time) error {
	q := r.sb.Update(r.name).
		SetMap(map[string]interface{}{
			"employee_id":   s.EmployeeID,
			"first_name":    s.FirstName,
			"last_name":     s.LastName,
			"email":         s.Email,
			"phone":         s.Phone,
			"gender":        s.Gender,
			"position":      s.Position,
			"department_id": s.DepartmentID,
			"hire_date":     s.HireDate,
			"status":        s.Status,
			"user_id":       s.UserID,
			"updated_at":    squirrel.Expr("NOW()"),
		}).
		Where(versionCond(s.ID, expected)).
		Suffix("RETURNING " + joinColumns(staffColumns))

	updated, err := queryOne[models.Staff](ctx, r.db, q, errNoRows)
	if errors.Is(err, errNoRows) {
		return r.resolveNoRows(ctx, s.ID, expected)
	}
	if err != nil {
		return r.translate(err, false)
	}
	*s = *updated
	return nil
}
