package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/db"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/dberrors"
	"github.com/Azechum30/npresec-app/internal/pkg/helpers"
	"github.com/Azechum30/npresec-app/internal/pkg/indexnumber"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	RoleRepository       *RoleRepository
	PermissionRepository *PermissionRepository
	TokenRepository      *TokenRepository
	DepartmentRepository *DepartmentRepository
	ClassRepository      *ClassRepository
	CourseRepository     *CourseRepository
	StudentRepository    *StudentRepository
	TeacherRepository    *TeacherRepository
	StaffRepository      *StaffRepository
	DashboardRepository  *DashboardRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool db.Pool, index indexnumber.Generator) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(pool),
		RoleRepository:       NewRoleRepository(pool),
		PermissionRepository: NewPermissionRepository(pool),
		TokenRepository:      NewTokenRepository(pool),
		DepartmentRepository: NewDepartmentRepository(pool),
		ClassRepository:      NewClassRepository(pool),
		CourseRepository:     NewCourseRepository(pool),
		StudentRepository:    NewStudentRepository(pool, index),
		TeacherRepository:    NewTeacherRepository(pool),
		StaffRepository:      NewStaffRepository(pool),
		DashboardRepository:  NewDashboardRepository(pool),
	}
}

// errNoRows marks an UPDATE ... RETURNING that matched nothing
var errNoRows = errors.New("no rows matched")

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// qualify prefixes each column with its table name
func qualify(tableName string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = tableName + "." + c
	}
	return out
}

// uniqueColumn maps a request field to the column that must stay unique
type uniqueColumn struct {
	Column string
	Fold   bool // compare with LOWER()
}

// table holds what every module repository shares: its table, entity name and uniqueness rules
type table struct {
	db     db.Pool
	sb     squirrel.StatementBuilderType
	name   string
	entity string

	// constraint name => field, for translating unique violations
	constraints map[string]dberrors.UniqueField
	// request field => column, for duplicate pre-validation
	uniqueColumns map[string]uniqueColumn
	notFound      error
}

func newTable(pool db.Pool, name, entity string, notFound error) table {
	return table{
		db:       pool,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		name:     name,
		entity:   entity,
		notFound: notFound,
	}
}

// translate converts constraint violations into application errors
func (t *table) translate(err error, deleting bool) error {
	return dberrors.Translate(err, t.entity, t.constraints, deleting)
}

// ExistsByID reports whether a row with id exists
func (t *table) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return t.exists(ctx, squirrel.Eq{"id": id})
}

// ExistsBy reports whether another row (id != excludeID) already holds value in the unique field
func (t *table) ExistsBy(ctx context.Context, field string, value any, excludeID int64) (bool, error) {
	col, ok := t.uniqueColumns[field]
	if !ok {
		return false, fmt.Errorf("%s has no unique field %q", t.entity, field)
	}

	var cond squirrel.Sqlizer = squirrel.Eq{col.Column: value}
	if col.Fold {
		cond = squirrel.Expr("LOWER("+col.Column+") = LOWER(?)", value)
	}
	if excludeID > 0 {
		cond = squirrel.And{cond, squirrel.NotEq{"id": excludeID}}
	}
	return t.exists(ctx, cond)
}

func (t *table) exists(ctx context.Context, cond squirrel.Sqlizer) (bool, error) {
	sql, args, err := t.sb.Select("1").From(t.name).Where(cond).Limit(1).
		Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := t.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking %s existence: %w", t.entity, err)
	}
	return exists, nil
}

// Delete removes one row
func (t *table) Delete(ctx context.Context, id int64) error {
	sql, args, err := t.sb.Delete(t.name).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	cmdTag, err := t.db.Exec(ctx, sql, args...)
	if err != nil {
		return t.translate(err, true)
	}
	if cmdTag.RowsAffected() == 0 {
		return t.notFound
	}
	return nil
}

// BulkDelete removes every id in one transaction.
// Nothing is deleted if any id is missing or still referenced.
func (t *table) BulkDelete(ctx context.Context, ids []int64) ([]int64, error) {
	ids = helpers.DedupeIDs(ids)
	if len(ids) == 0 {
		return nil, apperrors.NewBadRequestError("No ids given")
	}

	sql, args, err := t.sb.Delete(t.name).Where("id = ANY(?)", ids).Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bulk delete query: %w", err)
	}

	var deleted []int64
	err = db.WithTransaction(ctx, t.db, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return t.translate(err, true)
		}
		got, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return t.translate(err, true)
		}

		if missing := missingIDs(ids, got); len(missing) > 0 {
			return &apperrors.MissingIDsError{IDs: missing}
		}
		deleted = got
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("table", t.name).Int("count", len(ids)).Msg("Bulk delete rolled back")
		return nil, err
	}
	return deleted, nil
}

// resolveNoRows explains an UPDATE that matched nothing: missing row or stale version
func (t *table) resolveNoRows(ctx context.Context, id int64, expected *time.Time) error {
	if expected == nil {
		return t.notFound
	}
	exists, err := t.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return t.notFound
	}
	return apperrors.NewCustomError(apperrors.ErrStaleRecord,
		"This "+t.entity+" was changed by someone else. Reload it and try again")
}

// versionCond is the WHERE clause of an update with an optional optimistic lock
func versionCond(id int64, expected *time.Time) squirrel.Sqlizer {
	if expected == nil {
		return squirrel.Eq{"id": id}
	}
	return squirrel.Eq{"id": id, "updated_at": *expected}
}

func missingIDs(want, got []int64) []int64 {
	seen := make(map[int64]struct{}, len(got))
	for _, id := range got {
		seen[id] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// listOptions is a list request rendered into SQL terms
type listOptions struct {
	Filters     squirrel.And
	Search      string
	SearchCols  []string
	SortBy      string
	Desc        bool
	Sorts       map[string]string
	DefaultSort string
	Offset      uint64
	Limit       uint64 // 0 = no limit
}

func newListOptions(q dto.ListQuery, sorts map[string]string, defaultSort string, searchCols ...string) listOptions {
	return listOptions{
		Search:      q.SearchTerm(),
		SearchCols:  searchCols,
		SortBy:      q.SortBy,
		Desc:        q.Desc(),
		Sorts:       sorts,
		DefaultSort: defaultSort,
	}
}

// page sets offset and limit from a 1-based page
func (o *listOptions) page(q dto.ListQuery) {
	o.Offset, o.Limit = helpers.CalculateOffsetLimit(q.Page, q.PageSize)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where applies filters and the free-text search
func (o listOptions) where(b squirrel.SelectBuilder) squirrel.SelectBuilder {
	if len(o.Filters) > 0 {
		b = b.Where(o.Filters)
	}
	if o.Search != "" && len(o.SearchCols) > 0 {
		pattern := "%" + likeEscaper.Replace(o.Search) + "%"
		or := make(squirrel.Or, 0, len(o.SearchCols))
		for _, col := range o.SearchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		b = b.Where(or)
	}
	return b
}

// order applies a whitelisted sort column with id as tie-breaker
func (o listOptions) order(b squirrel.SelectBuilder, idColumn string) squirrel.SelectBuilder {
	col, ok := o.Sorts[o.SortBy]
	if !ok {
		col = o.Sorts[o.DefaultSort]
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	if col == "" {
		return b.OrderBy(idColumn + " " + dir)
	}
	return b.OrderBy(col+" "+dir, idColumn+" "+dir)
}

// listRecords runs the count and page queries for a list endpoint.
// The count is skipped (and returned as -1) when no limit is set.
func listRecords[T any](ctx context.Context, q db.DBTX, sel, count squirrel.SelectBuilder, idColumn string, o listOptions) ([]*T, int64, error) {
	total := int64(-1)
	if o.Limit > 0 {
		sql, args, err := o.where(count).ToSql()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to build count query: %w", err)
		}
		if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count records: %w", err)
		}
	}

	sel = o.order(o.where(sel), idColumn)
	if o.Limit > 0 {
		sel = sel.Limit(o.Limit).Offset(o.Offset)
	}

	items, err := queryAll[T](ctx, q, sel)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// queryAll scans every row into T by column name
func queryAll[T any](ctx context.Context, q db.DBTX, b squirrel.Sqlizer) ([]*T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	return items, nil
}

// queryOne scans a single row into T; no row yields notFound
func queryOne[T any](ctx context.Context, q db.DBTX, b squirrel.Sqlizer, notFound error) (*T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, err
	}
	return item, nil
}

type link struct {
	Owner int64
	Other int64
}

// loadLinks reads a junction table, grouping otherCol values by ownerCol
func loadLinks(ctx context.Context, q db.DBTX, sb squirrel.StatementBuilderType, junction, ownerCol, otherCol string, ownerIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	sql, args, err := sb.Select(ownerCol, otherCol).From(junction).
		Where(ownerCol+" = ANY(?)", ownerIDs).
		OrderBy(ownerCol, otherCol).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", junction, err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", junction, err)
	}
	links, err := pgx.CollectRows(rows, pgx.RowToStructByPos[link])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", junction, err)
	}

	for _, l := range links {
		out[l.Owner] = append(out[l.Owner], l.Other)
	}
	return out, nil
}

// replaceLinks swaps the junction rows of one owner for ids
func replaceLinks(ctx context.Context, tx pgx.Tx, sb squirrel.StatementBuilderType, junction, ownerCol, otherCol string, ownerID int64, ids []int64) error {
	sql, args, err := sb.Delete(junction).Where(squirrel.Eq{ownerCol: ownerID}).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to clear %s: %w", junction, err)
	}

	ids = helpers.DedupeIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	ins := sb.Insert(junction).Columns(ownerCol, otherCol)
	for _, id := range ids {
		ins = ins.Values(ownerID, id)
	}
	sql, args, err = ins.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func idsOf[T any](items []*T, id func(*T) int64) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}
