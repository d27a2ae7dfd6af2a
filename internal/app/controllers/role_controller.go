package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
)

// RoleService is what RoleController needs
type RoleService interface {
	records[models.Role, dto.RoleListQuery]
	editor[models.Role, dto.RoleRequest]
}

// PermissionService is what RoleController needs for the permission catalogue
type PermissionService interface {
	records[models.Permission, dto.PermissionListQuery]
	UpdateDescription(ctx context.Context, id int64, req *dto.PermissionUpdateRequest) (*models.Permission, error)
}

// RoleController handles roles and the permission catalogue
type RoleController struct {
	roleService       RoleService
	permissionService PermissionService
}

// NewRoleController creates a new RoleController
func NewRoleController(roleService RoleService, permissionService PermissionService) *RoleController {
	return &RoleController{roleService: roleService, permissionService: permissionService}
}

// ListRoles lists roles
// @Summary List roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Search text"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Role]}
// @Router /roles [get]
func (c *RoleController) ListRoles(ctx *gin.Context) {
	handleList[models.Role, dto.RoleListQuery](ctx, c.roleService)
}

// GetRole retrieves a role with its permissions
// @Summary Get role by ID
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} dto.APIResponse{data=models.Role}
// @Failure 404 {object} dto.ErrorResponse "Role not found"
// @Router /roles/{id} [get]
func (c *RoleController) GetRole(ctx *gin.Context) {
	handleGet[models.Role, dto.RoleListQuery](ctx, c.roleService)
}

// CreateRole creates a role
// @Summary Create a role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RoleRequest true "Role with permission IDs"
// @Success 201 {object} dto.APIResponse{data=models.Role}
// @Failure 400 {object} dto.ErrorResponse "Unknown permissions"
// @Failure 409 {object} dto.ErrorResponse "Name already taken"
// @Router /roles [post]
func (c *RoleController) CreateRole(ctx *gin.Context) {
	handleCreate(ctx, c.roleService.Create, "Role created successfully")
}

// UpdateRole replaces a role's name, description and permissions
// @Summary Update a role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Param request body dto.RoleRequest true "Role with permission IDs"
// @Success 200 {object} dto.APIResponse{data=models.Role}
// @Failure 409 {object} dto.ErrorResponse "Renaming the superuser role or stale record"
// @Router /roles/{id} [put]
func (c *RoleController) UpdateRole(ctx *gin.Context) {
	handleUpdate(ctx, c.roleService.Update, "Role updated successfully")
}

// DeleteRole deletes a role no user holds
// @Summary Delete a role
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Role still assigned or superuser role"
// @Router /roles/{id} [delete]
func (c *RoleController) DeleteRole(ctx *gin.Context) {
	handleDelete(ctx, c.roleService.Delete, "Role deleted successfully")
}

// BulkDeleteRoles deletes several roles at once
// @Summary Delete several roles
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Role IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Router /roles/bulk-delete [post]
func (c *RoleController) BulkDeleteRoles(ctx *gin.Context) {
	handleBulkDelete(ctx, c.roleService.BulkDelete)
}

// ExportRoles downloads the roles
// @Summary Export roles
// @Tags roles
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /roles/export [get]
func (c *RoleController) ExportRoles(ctx *gin.Context) {
	handleExport[models.Role, dto.RoleListQuery](ctx, c.roleService, "roles")
}

// ListPermissions lists the permission catalogue
// @Summary List permissions
// @Tags permissions
// @Produce json
// @Security BearerAuth
// @Param resource query string false "Only permissions of this resource, e.g. students"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Permission]}
// @Router /permissions [get]
func (c *RoleController) ListPermissions(ctx *gin.Context) {
	handleList[models.Permission, dto.PermissionListQuery](ctx, c.permissionService)
}

// GetPermission retrieves a permission
// @Summary Get permission by ID
// @Tags permissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Permission ID"
// @Success 200 {object} dto.APIResponse{data=models.Permission}
// @Router /permissions/{id} [get]
func (c *RoleController) GetPermission(ctx *gin.Context) {
	handleGet[models.Permission, dto.PermissionListQuery](ctx, c.permissionService)
}

// UpdatePermission edits a permission's description
// @Summary Update a permission description
// @Tags permissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Permission ID"
// @Param request body dto.PermissionUpdateRequest true "Description"
// @Success 200 {object} dto.APIResponse{data=models.Permission}
// @Router /permissions/{id} [patch]
func (c *RoleController) UpdatePermission(ctx *gin.Context) {
	handleUpdate(ctx, c.permissionService.UpdateDescription, "Permission updated successfully")
}

// ExportPermissions downloads the permission catalogue
// @Summary Export permissions
// @Tags permissions
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /permissions/export [get]
func (c *RoleController) ExportPermissions(ctx *gin.Context) {
	handleExport[models.Permission, dto.PermissionListQuery](ctx, c.permissionService, "permissions")
}
