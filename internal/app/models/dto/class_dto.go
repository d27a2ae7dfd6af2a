package dto

import (
	"strconv"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// ClassRequest is the create/update body of a class
type ClassRequest struct {
	Name           string `json:"name" binding:"required,notblank,max=100" example:"Form 1 Science A"`
	Code           string `json:"code" binding:"required,notblank,max=20" example:"1SA"`
	Level          int    `json:"level" binding:"required,min=1,max=3" example:"1"`
	DepartmentID   *int64 `json:"departmentId" binding:"omitempty,gt=0"`
	ClassTeacherID *int64 `json:"classTeacherId" binding:"omitempty,gt=0"`
	Capacity       *int   `json:"capacity" binding:"omitempty,gt=0,max=500"`
	Versioned
}

// ClassListQuery filters the class list
type ClassListQuery struct {
	ListQuery
	DepartmentID *int64 `form:"departmentId" binding:"omitempty,gt=0"`
	Level        *int   `form:"level" binding:"omitempty,min=1,max=3"`
}

// ClassTable converts classes into an export table
func ClassTable(items []*models.Class) *export.Table {
	t := export.NewTable("Classes", "ID", "Name", "Code", "Level", "Department ID", "Class Teacher ID", "Capacity", "Students")
	for _, c := range items {
		t.Append(strconv.FormatInt(c.ID, 10), c.Name, c.Code, strconv.Itoa(c.Level), formatID(c.DepartmentID),
			formatID(c.ClassTeacherID), formatInt(c.Capacity), strconv.Itoa(c.StudentCount))
	}
	return t
}
