package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
	"github.com/Azechum30/npresec-app/internal/pkg/helpers"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// idChecker is implemented by every module repository
type idChecker interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// uniqueChecker looks up values of a module's unique fields
type uniqueChecker interface {
	ExistsBy(ctx context.Context, field string, value any, excludeID int64) (bool, error)
}

// store is the repository surface shared by every admin module
type store[T any, Q any] interface {
	idChecker
	uniqueChecker
	GetByID(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, q Q) ([]*T, int64, error)
	ListAll(ctx context.Context, q Q, limit int) ([]*T, error)
	Delete(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) ([]int64, error)
}

type pagedQuery interface {
	Paging() (page, size int)
}

// recordService implements the operations every admin module has in common
type recordService[T any, Q pagedQuery] struct {
	store       store[T, Q]
	entity      string
	exportLimit int
	table       func([]*T) *export.Table
}

func newRecordService[T any, Q pagedQuery](s store[T, Q], entity string, exportLimit int, table func([]*T) *export.Table) recordService[T, Q] {
	return recordService[T, Q]{store: s, entity: entity, exportLimit: exportLimit, table: table}
}

// Get retrieves one record
func (s *recordService[T, Q]) Get(ctx context.Context, id int64) (*T, error) {
	return s.store.GetByID(ctx, id)
}

// List returns one page of records matching q
func (s *recordService[T, Q]) List(ctx context.Context, q Q) (*dto.ListResponse[*T], error) {
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing %s records: %w", s.entity, err)
	}
	if items == nil {
		items = []*T{}
	}

	page, size := q.Paging()
	return &dto.ListResponse[*T]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, nil
}

// Delete removes one record
func (s *recordService[T, Q]) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info().Str("entity", s.entity).Int64("id", id).Msg("Record deleted")
	return nil
}

// BulkDelete removes every id or nothing
func (s *recordService[T, Q]) BulkDelete(ctx context.Context, ids []int64) (*dto.BulkDeleteResponse, error) {
	deleted, err := s.store.BulkDelete(ctx, ids)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("entity", s.entity).Int("count", len(deleted)).Msg("Records bulk deleted")
	return &dto.BulkDeleteResponse{Deleted: deleted, Count: len(deleted)}, nil
}

// Export renders every record matching q, up to the export limit, as a table
func (s *recordService[T, Q]) Export(ctx context.Context, q Q) (*export.Table, error) {
	items, err := s.store.ListAll(ctx, q, s.exportLimit)
	if err != nil {
		return nil, fmt.Errorf("error exporting %s records: %w", s.entity, err)
	}
	if len(items) == s.exportLimit {
		logger.Warn().Str("entity", s.entity).Int("limit", s.exportLimit).Msg("Export truncated at limit")
	}
	return s.table(items), nil
}

// requireExists turns a missing id into the module's not-found error
func (s *recordService[T, Q]) requireExists(ctx context.Context, id int64) error {
	_, err := s.store.GetByID(ctx, id)
	return err
}

// uniqueValue is a candidate value for one unique field
type uniqueValue struct {
	Field string
	Label string
	Value any
}

func unique(field, label string, value any) uniqueValue {
	return uniqueValue{Field: field, Label: label, Value: value}
}

// checkDuplicates looks up every non-empty value and reports all conflicts at once
func checkDuplicates(ctx context.Context, repo uniqueChecker, entity string, excludeID int64, values ...uniqueValue) error {
	dup := apperrors.NewDuplicateError(entity)
	for _, v := range values {
		value, ok := present(v.Value)
		if !ok {
			continue
		}
		exists, err := repo.ExistsBy(ctx, v.Field, value, excludeID)
		if err != nil {
			return fmt.Errorf("error checking %s %s: %w", entity, v.Label, err)
		}
		if exists {
			dup.Add(v.Field, v.Label)
		}
	}
	return dup.OrNil()
}

// present dereferences optional values, reporting false for nil or empty ones
func present(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case string:
		return x, x != ""
	case *string:
		if x == nil || *x == "" {
			return nil, false
		}
		return *x, true
	case *int64:
		if x == nil {
			return nil, false
		}
		return *x, true
	}
	return v, true
}

// reference is an optional foreign key carried by a request
type reference struct {
	Field string
	Label string
	ID    *int64
	Repo  idChecker
}

func ref(field, label string, id *int64, repo idChecker) reference {
	return reference{Field: field, Label: label, ID: id, Repo: repo}
}

// checkReferences fails on the first set reference that points at nothing
func checkReferences(ctx context.Context, refs ...reference) error {
	for _, r := range refs {
		if r.ID == nil {
			continue
		}
		if err := checkReferenceIDs(ctx, r.Field, r.Label, r.Repo, []int64{*r.ID}); err != nil {
			return err
		}
	}
	return nil
}

// checkReferenceIDs verifies every id of a many-to-many assignment
func checkReferenceIDs(ctx context.Context, field, label string, repo idChecker, ids []int64) error {
	for _, id := range ids {
		ok, err := repo.ExistsByID(ctx, id)
		if err != nil {
			return fmt.Errorf("error checking %s: %w", label, err)
		}
		if !ok {
			return apperrors.NewInvalidReferenceError(field, fmt.Sprintf("The selected %s (id %d) does not exist", label, id))
		}
	}
	return nil
}

// parseDate parses a YYYY-MM-DD request field, naming the field on failure
func parseDate(field, value string) (time.Time, error) {
	t, err := helpers.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field, field+" must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	t, err := helpers.ParseOptionalDate(value)
	if err != nil {
		return nil, apperrors.NewValidationError(field, field+" must be a date in YYYY-MM-DD format")
	}
	return t, nil
}
