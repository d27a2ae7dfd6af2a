package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// MaxImportFileSize bounds student upload files
const MaxImportFileSize = 5 << 20

// StudentService is what StudentController needs
type StudentService interface {
	records[models.Student, dto.StudentListQuery]
	editor[models.Student, dto.StudentRequest]
	Import(ctx context.Context, r io.Reader, format export.Format) (*dto.ImportResult, error)
}

// StudentController handles student records
type StudentController struct {
	studentService StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// ListStudents lists students
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Matches names, index number, email and phone"
// @Param classId query int false "Filter by class"
// @Param departmentId query int false "Filter by department"
// @Param gender query string false "MALE or FEMALE"
// @Param status query string false "ACTIVE, GRADUATED, WITHDRAWN or SUSPENDED"
// @Param admissionYear query int false "Filter by admission year"
// @Param sortBy query string false "lastName, firstName, indexNumber, admissionDate or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Student]}
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	handleList[models.Student, dto.StudentListQuery](ctx, c.studentService)
}

// GetStudent retrieves a student by ID
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	handleGet[models.Student, dto.StudentListQuery](ctx, c.studentService)
}

// CreateStudent creates a student
// @Summary Create a student
// @Description An empty indexNumber is generated from the admission year
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Invalid data, unknown class/department or full class"
// @Failure 409 {object} dto.ErrorResponse "Index number, email, phone or user account already taken"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	handleCreate(ctx, c.studentService.Create, "Student created successfully")
}

// UpdateStudent updates a student
// @Summary Update a student
// @Description An empty indexNumber keeps the current one. expectedUpdatedAt enables the stale-edit check.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentRequest true "Student information"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Duplicate values or stale record"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	handleUpdate(ctx, c.studentService.Update, "Student updated successfully")
}

// DeleteStudent deletes a student
// @Summary Delete a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	handleDelete(ctx, c.studentService.Delete, "Student deleted successfully")
}

// BulkDeleteStudents deletes several students at once
// @Summary Delete several students
// @Description Deletes every listed student or none of them
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Student IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Failure 404 {object} dto.ErrorResponse "Some students not found"
// @Router /students/bulk-delete [post]
func (c *StudentController) BulkDeleteStudents(ctx *gin.Context) {
	handleBulkDelete(ctx, c.studentService.BulkDelete)
}

// ExportStudents downloads the filtered students
// @Summary Export students
// @Tags students
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /students/export [get]
func (c *StudentController) ExportStudents(ctx *gin.Context) {
	handleExport[models.Student, dto.StudentListQuery](ctx, c.studentService, "students")
}

// ImportStudents creates students from an uploaded CSV or XLSX file
// @Summary Import students
// @Description The first row is the header. Each data row is created independently; rejected rows are reported by line.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResult}
// @Failure 400 {object} dto.ErrorResponse "Missing, unreadable or oversized file"
// @Router /students/import [post]
func (c *StudentController) ImportStudents(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A CSV or XLSX file is required").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	if fileHeader.Size > MaxImportFileSize {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "The file is larger than 5 MB").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	format, err := export.FormatFromFileName(fileHeader.Filename)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Only .csv and .xlsx files can be imported").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	result, err := c.studentService.Import(ctx.Request.Context(), file, format)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, result, "Import finished")
}
