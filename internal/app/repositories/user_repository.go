package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/db"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/dberrors"
)

var userColumns = []string{
	"id", "email", "username", "password", "first_name", "last_name", "role_id", "is_active", "last_login_at",
	"created_at", "updated_at",
}

var userSelect = append(qualify("u", userColumns), "COALESCE(r.name, '') AS role_name")

var userSorts = map[string]string{
	"email":       "u.email",
	"username":    "u.username",
	"lastName":    "u.last_name",
	"firstName":   "u.first_name",
	"lastLoginAt": "u.last_login_at",
	"createdAt":   "u.created_at",
}

// UserRepository handles database operations for login accounts
type UserRepository struct {
	table
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool db.Pool) *UserRepository {
	t := newTable(pool, "users", "user", apperrors.ErrUserNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"users_email_key":    {Field: "email", Label: "email"},
		"users_username_key": {Field: "username", Label: "username"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"email":    {Column: "email", Fold: true},
		"username": {Column: "username", Fold: true},
	}
	return &UserRepository{table: t}
}

func (r *UserRepository) selectUsers() squirrel.SelectBuilder {
	return r.sb.Select(userSelect...).From("users u").LeftJoin("roles r ON r.id = u.role_id")
}

// GetByID retrieves a user with their role name
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return queryOne[models.User](ctx, r.db, r.selectUsers().Where(squirrel.Eq{"u.id": id}), r.notFound)
}

// GetByLogin finds a user whose email or username matches login, ignoring case
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	q := r.selectUsers().Where(squirrel.Or{
		squirrel.Expr("LOWER(u.email) = LOWER(?)", login),
		squirrel.Expr("LOWER(u.username) = LOWER(?)", login),
	}).Limit(1)
	return queryOne[models.User](ctx, r.db, q, r.notFound)
}

func (r *UserRepository) listOptions(q dto.UserListQuery) listOptions {
	o := newListOptions(q.ListQuery, userSorts, "lastName", "u.email", "u.username", "u.first_name", "u.last_name")
	if q.RoleID != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"u.role_id": *q.RoleID})
	}
	if q.IsActive != nil {
		o.Filters = append(o.Filters, squirrel.Eq{"u.is_active": *q.IsActive})
	}
	return o
}

// List returns one page of users and the total match count
func (r *UserRepository) List(ctx context.Context, q dto.UserListQuery) ([]*models.User, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	return listRecords[models.User](ctx, r.db, r.selectUsers(), r.sb.Select("COUNT(*)").From("users u"), "u.id", o)
}

// ListAll returns up to limit users matching q, for export
func (r *UserRepository) ListAll(ctx context.Context, q dto.UserListQuery, limit int) ([]*models.User, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.User](ctx, r.db, r.selectUsers(), r.sb.Select("COUNT(*)").From("users u"), "u.id", o)
	return items, err
}

// Create inserts a user; u.Password must already be hashed
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	sql, args, err := r.sb.Insert(r.name).
		Columns("email", "username", "password", "first_name", "last_name", "role_id", "is_active").
		Values(u.Email, u.Username, u.Password, u.FirstName, u.LastName, u.RoleID, u.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return r.translate(err, false)
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// Update saves profile, role and active flag; a non-nil expected enforces the optimistic lock
func (r *UserRepository) Update(ctx context.Context, u *models.User, expected *time.Time) error {
	sql, args, err := r.sb.Update(r.name).
		Set("email", u.Email).
		Set("username", u.Username).
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("role_id", u.RoleID).
		Set("is_active", u.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(versionCond(u.ID, expected)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return r.translate(err, false)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.resolveNoRows(ctx, u.ID, expected)
	}

	updated, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *updated
	return nil
}

// SetActive activates or deactivates an account
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.setColumns(ctx, id, map[string]interface{}{"is_active": active})
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.setColumns(ctx, id, map[string]interface{}{"password": hash})
}

// TouchLastLogin records a successful login
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update(r.name).Set("last_login_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *UserRepository) setColumns(ctx context.Context, id int64, values map[string]interface{}) error {
	values["updated_at"] = squirrel.Expr("NOW()")
	sql, args, err := r.sb.Update(r.name).SetMap(values).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user update: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notFound
	}
	return nil
}

// CountActiveByRole counts active users holding a role
func (r *UserRepository) CountActiveByRole(ctx context.Context, roleID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From(r.name).
		Where(squirrel.Eq{"role_id": roleID, "is_active": true}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
