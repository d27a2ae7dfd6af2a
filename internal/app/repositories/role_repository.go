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
)

var roleColumns = []string{"id", "name", "description", "created_at", "updated_at"}

var permissionColumns = []string{"id", "name", "description", "created_at"}

var roleSorts = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

var permissionSorts = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

// RoleRepository handles roles and their permission grants
type RoleRepository struct {
	table
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(pool db.Pool) *RoleRepository {
	t := newTable(pool, "roles", "role", apperrors.ErrRoleNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"roles_name_key": {Field: "name", Label: "name"},
	}
	t.uniqueColumns = map[string]uniqueColumn{
		"name": {Column: "name", Fold: true},
	}
	return &RoleRepository{table: t}
}

// GetByID retrieves a role with its permissions
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByName retrieves a role by its exact name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

func (r *RoleRepository) getOne(ctx context.Context, cond squirrel.Sqlizer) (*models.Role, error) {
	q := r.sb.Select(roleColumns...).From(r.name).Where(cond)
	role, err := queryOne[models.Role](ctx, r.db, q, r.notFound)
	if err != nil {
		return nil, err
	}
	return role, r.attachPermissions(ctx, r.db, []*models.Role{role})
}

func (r *RoleRepository) listOptions(q dto.RoleListQuery) listOptions {
	return newListOptions(q.ListQuery, roleSorts, "name", "name", "description")
}

// List returns one page of roles and the total match count
func (r *RoleRepository) List(ctx context.Context, q dto.RoleListQuery) ([]*models.Role, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	items, total, err := listRecords[models.Role](ctx, r.db,
		r.sb.Select(roleColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	if err != nil {
		return nil, 0, err
	}
	return items, total, r.attachPermissions(ctx, r.db, items)
}

// ListAll returns up to limit roles matching q, for export
func (r *RoleRepository) ListAll(ctx context.Context, q dto.RoleListQuery, limit int) ([]*models.Role, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Role](ctx, r.db,
		r.sb.Select(roleColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	if err != nil {
		return nil, err
	}
	return items, r.attachPermissions(ctx, r.db, items)
}

// Create inserts a role with its permission grants
func (r *RoleRepository) Create(ctx context.Context, role *models.Role, permissionIDs []int64) error {
	q := r.sb.Insert(r.name).
		Columns("name", "description").
		Values(role.Name, role.Description).
		Suffix("RETURNING " + joinColumns(roleColumns))
	return r.save(ctx, role, q, permissionIDs, nil)
}

// Update saves the role and replaces its permission grants atomically
func (r *RoleRepository) Update(ctx context.Context, role *models.Role, permissionIDs []int64, expected *time.Time) error {
	q := r.sb.Update(r.name).
		Set("name", role.Name).
		Set("description", role.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(versionCond(role.ID, expected)).
		Suffix("RETURNING " + joinColumns(roleColumns))
	return r.save(ctx, role, q, permissionIDs, expected)
}

func (r *RoleRepository) save(ctx context.Context, role *models.Role, q squirrel.Sqlizer, permissionIDs []int64, expected *time.Time) error {
	updating := role.ID > 0

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		saved, err := queryOne[models.Role](ctx, tx, q, errNoRows)
		if err != nil {
			return err
		}
		if err := replaceLinks(ctx, tx, r.sb, "role_permissions", "role_id", "permission_id", saved.ID, permissionIDs); err != nil {
			return err
		}
		if err := r.attachPermissions(ctx, tx, []*models.Role{saved}); err != nil {
			return err
		}
		*role = *saved
		return nil
	})

	if updating && errors.Is(err, errNoRows) {
		return r.resolveNoRows(ctx, role.ID, expected)
	}
	if err != nil {
		return r.translate(err, false)
	}
	return nil
}

// PermissionNames lists the permission names granted to a role
func (r *RoleRepository) PermissionNames(ctx context.Context, roleID int64) ([]string, error) {
	sql, args, err := r.sb.Select("p.name").
		From("permissions p").
		Join("role_permissions rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build role permissions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query role permissions: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Grant adds permissions to a role, ignoring ones it already has
func (r *RoleRepository) Grant(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	ins := r.sb.Insert("role_permissions").Columns("role_id", "permission_id")
	for _, id := range permissionIDs {
		ins = ins.Values(roleID, id)
	}
	sql, args, err := ins.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to grant permissions: %w", err)
	}
	return nil
}

type rolePermission struct {
	RoleID      int64     `db:"role_id"`
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *RoleRepository) attachPermissions(ctx context.Context, q db.DBTX, roles []*models.Role) error {
	for _, role := range roles {
		role.Permissions = []*models.Permission{}
	}
	if len(roles) == 0 {
		return nil
	}

	sel := r.sb.Select("rp.role_id", "p.id", "p.name", "p.description", "p.created_at").
		From("role_permissions rp").
		Join("permissions p ON p.id = rp.permission_id").
		Where("rp.role_id = ANY(?)", idsOf(roles, func(role *models.Role) int64 { return role.ID })).
		OrderBy("p.name")

	grants, err := queryAll[rolePermission](ctx, q, sel)
	if err != nil {
		return err
	}

	byRole := make(map[int64]*models.Role, len(roles))
	for _, role := range roles {
		byRole[role.ID] = role
	}
	for _, g := range grants {
		if role, ok := byRole[g.RoleID]; ok {
			role.Permissions = append(role.Permissions, &models.Permission{
				ID: g.ID, Name: g.Name, Description: g.Description, CreatedAt: g.CreatedAt,
			})
		}
	}
	return nil
}

// PermissionRepository handles the permission catalogue
type PermissionRepository struct {
	table
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(pool db.Pool) *PermissionRepository {
	t := newTable(pool, "permissions", "permission", apperrors.ErrPermissionNotFound)
	t.constraints = map[string]dberrors.UniqueField{
		"permissions_name_key": {Field: "name", Label: "name"},
	}
	return &PermissionRepository{table: t}
}

// GetByID retrieves a permission by ID
func (r *PermissionRepository) GetByID(ctx context.Context, id int64) (*models.Permission, error) {
	q := r.sb.Select(permissionColumns...).From(r.name).Where(squirrel.Eq{"id": id})
	return queryOne[models.Permission](ctx, r.db, q, r.notFound)
}

func (r *PermissionRepository) listOptions(q dto.PermissionListQuery) listOptions {
	o := newListOptions(q.ListQuery, permissionSorts, "name", "name", "description")
	if q.Resource != "" {
		o.Filters = append(o.Filters, squirrel.Like{"name": likeEscaper.Replace(q.Resource) + ":%"})
	}
	return o
}

// List returns one page of permissions and the total match count
func (r *PermissionRepository) List(ctx context.Context, q dto.PermissionListQuery) ([]*models.Permission, int64, error) {
	o := r.listOptions(q)
	o.page(q.ListQuery)
	return listRecords[models.Permission](ctx, r.db,
		r.sb.Select(permissionColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
}

// ListAll returns up to limit permissions matching q
func (r *PermissionRepository) ListAll(ctx context.Context, q dto.PermissionListQuery, limit int) ([]*models.Permission, error) {
	o := r.listOptions(q)
	o.Limit = uint64(limit)
	items, _, err := listRecords[models.Permission](ctx, r.db,
		r.sb.Select(permissionColumns...).From(r.name), r.sb.Select("COUNT(*)").From(r.name), "id", o)
	return items, err
}

// UpdateDescription edits the description of a permission
func (r *PermissionRepository) UpdateDescription(ctx context.Context, id int64, description string) (*models.Permission, error) {
	q := r.sb.Update(r.name).
		Set("description", description).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(permissionColumns))
	return queryOne[models.Permission](ctx, r.db, q, r.notFound)
}

// MissingIDs returns the ids that do not name a permission
func (r *PermissionRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sql, args, err := r.sb.Select("id").From(r.name).Where("id = ANY(?)", ids).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	return missingIDs(ids, found), nil
}

// Upsert inserts a permission or refreshes its description, returning its id
func (r *PermissionRepository) Upsert(ctx context.Context, name, description string) (int64, error) {
	sql, args, err := r.sb.Insert(r.name).
		Columns("name", "description").
		Values(name, description).
		Suffix("ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert permission %s: %w", name, err)
	}
	return id, nil
}
