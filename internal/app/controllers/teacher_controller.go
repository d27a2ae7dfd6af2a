package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
)

// TeacherService is what TeacherController needs
type TeacherService interface {
	records[models.Teacher, dto.TeacherListQuery]
	editor[models.Teacher, dto.TeacherRequest]
}

// TeacherController handles teacher operations
type TeacherController struct {
	teacherService TeacherService
}

// NewTeacherController creates a new TeacherController
func NewTeacherController(teacherService TeacherService) *TeacherController {
	return &TeacherController{teacherService: teacherService}
}

// ListTeachers lists teachers
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Matches names, employee ID and email"
// @Param departmentId query int false "Filter by department"
// @Param status query string false "ACTIVE, ON_LEAVE, RETIRED or TERMINATED"
// @Param sortBy query string false "lastName, firstName, employeeId, hireDate or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Teacher]}
// @Router /teachers [get]
func (c *TeacherController) ListTeachers(ctx *gin.Context) {
	handleList[models.Teacher, dto.TeacherListQuery](ctx, c.teacherService)
}

// GetTeacher retrieves a teacher with the courses they teach
// @Summary Get teacher by ID
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} dto.APIResponse{data=models.Teacher}
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Router /teachers/{id} [get]
func (c *TeacherController) GetTeacher(ctx *gin.Context) {
	handleGet[models.Teacher, dto.TeacherListQuery](ctx, c.teacherService)
}

// CreateTeacher creates a teacher
// @Summary Create a teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TeacherRequest true "Teacher information"
// @Success 201 {object} dto.APIResponse{data=models.Teacher}
// @Failure 409 {object} dto.ErrorResponse "Employee ID, email, phone or user account already taken"
// @Router /teachers [post]
func (c *TeacherController) CreateTeacher(ctx *gin.Context) {
	handleCreate(ctx, c.teacherService.Create, "Teacher created successfully")
}

// UpdateTeacher updates a teacher
// @Summary Update a teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param request body dto.TeacherRequest true "Teacher information"
// @Success 200 {object} dto.APIResponse{data=models.Teacher}
// @Router /teachers/{id} [put]
func (c *TeacherController) UpdateTeacher(ctx *gin.Context) {
	handleUpdate(ctx, c.teacherService.Update, "Teacher updated successfully")
}

// DeleteTeacher deletes a teacher
// @Summary Delete a teacher
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Teacher still heads a department or class"
// @Router /teachers/{id} [delete]
func (c *TeacherController) DeleteTeacher(ctx *gin.Context) {
	handleDelete(ctx, c.teacherService.Delete, "Teacher deleted successfully")
}

// BulkDeleteTeachers deletes several teachers at once
// @Summary Delete several teachers
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Teacher IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Router /teachers/bulk-delete [post]
func (c *TeacherController) BulkDeleteTeachers(ctx *gin.Context) {
	handleBulkDelete(ctx, c.teacherService.BulkDelete)
}

// ExportTeachers downloads the filtered teachers
// @Summary Export teachers
// @Tags teachers
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /teachers/export [get]
func (c *TeacherController) ExportTeachers(ctx *gin.Context) {
	handleExport[models.Teacher, dto.TeacherListQuery](ctx, c.teacherService, "teachers")
}
