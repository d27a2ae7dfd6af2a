package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
)

// DepartmentService is what DepartmentController needs
type DepartmentService interface {
	records[models.Department, dto.DepartmentListQuery]
	editor[models.Department, dto.DepartmentRequest]
}

// DepartmentController handles department-related operations
type DepartmentController struct {
	departmentService DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService DepartmentService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
	}
}

// ListDepartments lists departments
// @Summary List departments
// @Description Returns one page of departments. search matches name and code.
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Search text"
// @Param sortBy query string false "name, code or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Department]}
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /departments [get]
func (c *DepartmentController) ListDepartments(ctx *gin.Context) {
	handleList[models.Department, dto.DepartmentListQuery](ctx, c.departmentService)
}

// GetDepartment retrieves a department by ID
// @Summary Get department by ID
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=models.Department}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /departments/{id} [get]
func (c *DepartmentController) GetDepartment(ctx *gin.Context) {
	handleGet[models.Department, dto.DepartmentListQuery](ctx, c.departmentService)
}

// CreateDepartment handles department creation
// @Summary Create a new department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DepartmentRequest true "Department information"
// @Success 201 {object} dto.APIResponse{data=models.Department} "Department created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Name or code already taken"
// @Router /departments [post]
func (c *DepartmentController) CreateDepartment(ctx *gin.Context) {
	handleCreate(ctx, c.departmentService.Create, "Department created successfully")
}

// UpdateDepartment updates an existing department
// @Summary Update a department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param request body dto.DepartmentRequest true "Updated department information"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department updated successfully"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate values or stale record"
// @Router /departments/{id} [put]
func (c *DepartmentController) UpdateDepartment(ctx *gin.Context) {
	handleUpdate(ctx, c.departmentService.Update, "Department updated successfully")
}

// DeleteDepartment deletes a department
// @Summary Delete a department
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department still referenced"
// @Router /departments/{id} [delete]
func (c *DepartmentController) DeleteDepartment(ctx *gin.Context) {
	handleDelete(ctx, c.departmentService.Delete, "Department deleted successfully")
}

// BulkDeleteDepartments deletes several departments at once
// @Summary Delete several departments
// @Description Deletes every listed department or none of them
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Department IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Failure 404 {object} dto.ErrorResponse "Some departments not found"
// @Router /departments/bulk-delete [post]
func (c *DepartmentController) BulkDeleteDepartments(ctx *gin.Context) {
	handleBulkDelete(ctx, c.departmentService.BulkDelete)
}

// ExportDepartments downloads the filtered departments
// @Summary Export departments
// @Tags departments
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /departments/export [get]
func (c *DepartmentController) ExportDepartments(ctx *gin.Context) {
	handleExport[models.Department, dto.DepartmentListQuery](ctx, c.departmentService, "departments")
}
