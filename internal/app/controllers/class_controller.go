package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
)

// ClassService is what ClassController needs
type ClassService interface {
	records[models.Class, dto.ClassListQuery]
	editor[models.Class, dto.ClassRequest]
}

// ClassController handles class (form/stream) operations
type ClassController struct {
	classService ClassService
}

// NewClassController creates a new ClassController
func NewClassController(classService ClassService) *ClassController {
	return &ClassController{classService: classService}
}

// ListClasses lists classes
// @Summary List classes
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Search text"
// @Param departmentId query int false "Filter by department"
// @Param level query int false "Filter by level (1-3)"
// @Param sortBy query string false "name, code, level or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Class]}
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	handleList[models.Class, dto.ClassListQuery](ctx, c.classService)
}

// GetClass retrieves a class with its enrolment count
// @Summary Get class by ID
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	handleGet[models.Class, dto.ClassListQuery](ctx, c.classService)
}

// CreateClass creates a class
// @Summary Create a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClassRequest true "Class information"
// @Success 201 {object} dto.APIResponse{data=models.Class}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown department/teacher"
// @Failure 409 {object} dto.ErrorResponse "Name or code already taken"
// @Router /classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	handleCreate(ctx, c.classService.Create, "Class created successfully")
}

// UpdateClass updates a class
// @Summary Update a class
// @Description Capacity cannot drop below the number of enrolled students
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.ClassRequest true "Class information"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate values or stale record"
// @Router /classes/{id} [put]
func (c *ClassController) UpdateClass(ctx *gin.Context) {
	handleUpdate(ctx, c.classService.Update, "Class updated successfully")
}

// DeleteClass deletes a class
// @Summary Delete a class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Students are still enrolled"
// @Router /classes/{id} [delete]
func (c *ClassController) DeleteClass(ctx *gin.Context) {
	handleDelete(ctx, c.classService.Delete, "Class deleted successfully")
}

// BulkDeleteClasses deletes several classes at once
// @Summary Delete several classes
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Class IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Router /classes/bulk-delete [post]
func (c *ClassController) BulkDeleteClasses(ctx *gin.Context) {
	handleBulkDelete(ctx, c.classService.BulkDelete)
}

// ExportClasses downloads the filtered classes
// @Summary Export classes
// @Tags classes
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /classes/export [get]
func (c *ClassController) ExportClasses(ctx *gin.Context) {
	handleExport[models.Class, dto.ClassListQuery](ctx, c.classService, "classes")
}
