package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
)

// CourseService is what CourseController needs
type CourseService interface {
	records[models.Course, dto.CourseListQuery]
	editor[models.Course, dto.CourseRequest]
}

// CourseController handles course operations
type CourseController struct {
	courseService CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// ListCourses lists courses
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Search text"
// @Param departmentId query int false "Filter by department"
// @Param teacherId query int false "Only courses taught by this teacher"
// @Param classId query int false "Only courses taken by this class"
// @Param sortBy query string false "code, title, creditHours or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Course]}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	handleList[models.Course, dto.CourseListQuery](ctx, c.courseService)
}

// GetCourse retrieves a course with its teacher and class assignments
// @Summary Get course by ID
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	handleGet[models.Course, dto.CourseListQuery](ctx, c.courseService)
}

// CreateCourse creates a course
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse "Invalid data or unknown teacher/class"
// @Failure 409 {object} dto.ErrorResponse "Code or title already taken"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	handleCreate(ctx, c.courseService.Create, "Course created successfully")
}

// UpdateCourse updates a course and replaces its assignments
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CourseRequest true "Course information"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	handleUpdate(ctx, c.courseService.Update, "Course updated successfully")
}

// DeleteCourse deletes a course
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	handleDelete(ctx, c.courseService.Delete, "Course deleted successfully")
}

// BulkDeleteCourses deletes several courses at once
// @Summary Delete several courses
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Course IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Router /courses/bulk-delete [post]
func (c *CourseController) BulkDeleteCourses(ctx *gin.Context) {
	handleBulkDelete(ctx, c.courseService.BulkDelete)
}

// ExportCourses downloads the filtered courses
// @Summary Export courses
// @Tags courses
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /courses/export [get]
func (c *CourseController) ExportCourses(ctx *gin.Context) {
	handleExport[models.Course, dto.CourseListQuery](ctx, c.courseService, "courses")
}
