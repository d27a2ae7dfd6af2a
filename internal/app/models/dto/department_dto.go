package dto

import (
	"strconv"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// DepartmentRequest is the create/update body of a department
type DepartmentRequest struct {
	Name          string `json:"name" binding:"required,notblank,max=100" example:"Science"`
	Code          string `json:"code" binding:"required,deptcode" example:"SCI"`
	Description   string `json:"description" binding:"omitempty,max=500"`
	HeadTeacherID *int64 `json:"headTeacherId" binding:"omitempty,gt=0"`
	Versioned
}

// DepartmentListQuery filters the department list
type DepartmentListQuery struct {
	ListQuery
}

// DepartmentTable converts departments into an export table
func DepartmentTable(items []*models.Department) *export.Table {
	t := export.NewTable("Departments", "ID", "Name", "Code", "Description", "Head Teacher ID", "Created At")
	for _, d := range items {
		t.Append(strconv.FormatInt(d.ID, 10), d.Name, d.Code, d.Description, formatID(d.HeadTeacherID),
			d.CreatedAt.Format(timestampLayout))
	}
	return t
}
