package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
)

// StaffService is what StaffController needs
type StaffService interface {
	records[models.Staff, dto.StaffListQuery]
	editor[models.Staff, dto.StaffRequest]
}

// StaffController handles non-teaching staff
type StaffController struct {
	staffService StaffService
}

// NewStaffController creates a new StaffController
func NewStaffController(staffService StaffService) *StaffController {
	return &StaffController{staffService: staffService}
}

// ListStaff lists staff members
// @Summary List staff
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Matches names, employee ID, email and position"
// @Param departmentId query int false "Filter by department"
// @Param position query string false "Filter by position"
// @Param status query string false "ACTIVE, ON_LEAVE, RETIRED or TERMINATED"
// @Param sortBy query string false "lastName, firstName, employeeId, position, hireDate or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Staff]}
// @Router /staff [get]
func (c *StaffController) ListStaff(ctx *gin.Context) {
	handleList[models.Staff, dto.StaffListQuery](ctx, c.staffService)
}

// GetStaff retrieves a staff member
// @Summary Get staff member by ID
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} dto.APIResponse{data=models.Staff}
// @Failure 404 {object} dto.ErrorResponse "Staff member not found"
// @Router /staff/{id} [get]
func (c *StaffController) GetStaff(ctx *gin.Context) {
	handleGet[models.Staff, dto.StaffListQuery](ctx, c.staffService)
}

// CreateStaff creates a staff member
// @Summary Create a staff member
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StaffRequest true "Staff information"
// @Success 201 {object} dto.APIResponse{data=models.Staff}
// @Router /staff [post]
func (c *StaffController) CreateStaff(ctx *gin.Context) {
	handleCreate(ctx, c.staffService.Create, "Staff member created successfully")
}

// UpdateStaff updates a staff member
// @Summary Update a staff member
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param request body dto.StaffRequest true "Staff information"
// @Success 200 {object} dto.APIResponse{data=models.Staff}
// @Router /staff/{id} [put]
func (c *StaffController) UpdateStaff(ctx *gin.Context) {
	handleUpdate(ctx, c.staffService.Update, "Staff member updated successfully")
}

// DeleteStaff deletes a staff member
// @Summary Delete a staff member
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} dto.APIResponse
// @Router /staff/{id} [delete]
func (c *StaffController) DeleteStaff(ctx *gin.Context) {
	handleDelete(ctx, c.staffService.Delete, "Staff member deleted successfully")
}

// BulkDeleteStaff deletes several staff members at once
// @Summary Delete several staff members
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Staff IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Router /staff/bulk-delete [post]
func (c *StaffController) BulkDeleteStaff(ctx *gin.Context) {
	handleBulkDelete(ctx, c.staffService.BulkDelete)
}

// ExportStaff downloads the filtered staff list
// @Summary Export staff
// @Tags staff
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /staff/export [get]
func (c *StaffController) ExportStaff(ctx *gin.Context) {
	handleExport[models.Staff, dto.StaffListQuery](ctx, c.staffService, "staff")
}
