package services

import (
	"context"
	"strings"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/helpers"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// RoleStore is the role persistence the service needs
type RoleStore interface {
	store[models.Role, dto.RoleListQuery]
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role, permissionIDs []int64) error
	Update(ctx context.Context, role *models.Role, permissionIDs []int64, expected *time.Time) error
}

// PermissionStore is the permission persistence the services need
type PermissionStore interface {
	store[models.Permission, dto.PermissionListQuery]
	UpdateDescription(ctx context.Context, id int64, description string) (*models.Permission, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// PermissionCache is told when a role's grants change
type PermissionCache interface {
	Invalidate(roleID int64)
	InvalidateAll()
}

// RoleService handles roles and their permission grants
type RoleService struct {
	recordService[models.Role, dto.RoleListQuery]
	roles         RoleStore
	permissions   PermissionStore
	cache         PermissionCache
	superuserRole string
}

// NewRoleService creates a new RoleService
func NewRoleService(roles RoleStore, permissions PermissionStore, cache PermissionCache, superuserRole string, exportLimit int) *RoleService {
	return &RoleService{
		recordService: newRecordService[models.Role, dto.RoleListQuery](roles, "role", exportLimit, dto.RoleTable),
		roles:         roles,
		permissions:   permissions,
		cache:         cache,
		superuserRole: superuserRole,
	}
}

func (s *RoleService) validate(ctx context.Context, name string, permissionIDs []int64, excludeID int64) error {
	missing, err := s.permissions.MissingIDs(ctx, permissionIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		e := apperrors.NewCustomError(apperrors.ErrInvalidReference, "Some selected permissions do not exist").
			WithDetails(map[string]interface{}{"ids": missing})
		e.Field = "permissionIds"
		return e
	}
	return checkDuplicates(ctx, s.roles, "role", excludeID, unique("name", "name", name))
}

// Create creates a role with its grants
func (s *RoleService) Create(ctx context.Context, req *dto.RoleRequest) (*models.Role, error) {
	role := &models.Role{
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Description: strings.TrimSpace(req.Description),
	}
	ids := helpers.DedupeIDs(req.PermissionIDs)
	if err := s.validate(ctx, role.Name, ids, 0); err != nil {
		return nil, err
	}

	if err := s.roles.Create(ctx, role, ids); err != nil {
		return nil, err
	}
	logger.Info().Int64("roleID", role.ID).Str("name", role.Name).Int("permissions", len(ids)).Msg("Role created")
	return role, nil
}

// Update replaces a role's name, description and grants. The superuser role cannot be renamed.
func (s *RoleService) Update(ctx context.Context, id int64, req *dto.RoleRequest) (*models.Role, error) {
	current, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		ID:          id,
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Description: strings.TrimSpace(req.Description),
	}
	if current.Name == s.superuserRole && role.Name != current.Name {
		return nil, apperrors.NewConflictError("The " + s.superuserRole + " role cannot be renamed")
	}

	ids := helpers.DedupeIDs(req.PermissionIDs)
	if err := s.validate(ctx, role.Name, ids, id); err != nil {
		return nil, err
	}

	if err := s.roles.Update(ctx, role, ids, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	s.cache.Invalidate(id)
	return role, nil
}

// Delete removes a role that no user holds. The superuser role cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	if err := s.guardSuperuser(ctx, []int64{id}); err != nil {
		return err
	}
	if err := s.recordService.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(id)
	return nil
}

// BulkDelete removes every role or nothing
func (s *RoleService) BulkDelete(ctx context.Context, ids []int64) (*dto.BulkDeleteResponse, error) {
	if err := s.guardSuperuser(ctx, ids); err != nil {
		return nil, err
	}
	resp, err := s.recordService.BulkDelete(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateAll()
	return resp, nil
}

func (s *RoleService) guardSuperuser(ctx context.Context, ids []int64) error {
	super, err := s.roles.GetByName(ctx, s.superuserRole)
	if apperrors.Is(err, apperrors.ErrResourceNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == super.ID {
			return apperrors.NewConflictError("The " + s.superuserRole + " role cannot be deleted")
		}
	}
	return nil
}

// PermissionService exposes the seeded permission catalogue
type PermissionService struct {
	recordService[models.Permission, dto.PermissionListQuery]
	permissions PermissionStore
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(permissions PermissionStore, exportLimit int) *PermissionService {
	return &PermissionService{
		recordService: newRecordService[models.Permission, dto.PermissionListQuery](permissions, "permission", exportLimit, dto.PermissionTable),
		permissions:   permissions,
	}
}

// UpdateDescription edits the description of a permission
func (s *PermissionService) UpdateDescription(ctx context.Context, id int64, req *dto.PermissionUpdateRequest) (*models.Permission, error) {
	return s.permissions.UpdateDescription(ctx, id, strings.TrimSpace(req.Description))
}
