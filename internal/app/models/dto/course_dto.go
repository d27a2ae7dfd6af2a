package dto

import (
	"strconv"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// CourseRequest is the create/update body of a course.
// TeacherIDs and ClassIDs replace the existing assignments.
type CourseRequest struct {
	Code         string  `json:"code" binding:"required,notblank,max=20" example:"MATH101"`
	Title        string  `json:"title" binding:"required,notblank,max=150" example:"Core Mathematics"`
	Description  string  `json:"description" binding:"omitempty,max=1000"`
	CreditHours  int     `json:"creditHours" binding:"min=0,max=20" example:"4"`
	DepartmentID *int64  `json:"departmentId" binding:"omitempty,gt=0"`
	TeacherIDs   []int64 `json:"teacherIds" binding:"omitempty,max=50,dive,gt=0"`
	ClassIDs     []int64 `json:"classIds" binding:"omitempty,max=100,dive,gt=0"`
	Versioned
}

// CourseListQuery filters the course list
type CourseListQuery struct {
	ListQuery
	DepartmentID *int64 `form:"departmentId" binding:"omitempty,gt=0"`
	TeacherID    *int64 `form:"teacherId" binding:"omitempty,gt=0"`
	ClassID      *int64 `form:"classId" binding:"omitempty,gt=0"`
}

// CourseTable converts courses into an export table
func CourseTable(items []*models.Course) *export.Table {
	t := export.NewTable("Courses", "ID", "Code", "Title", "Credit Hours", "Department ID", "Teacher IDs", "Class IDs")
	for _, c := range items {
		t.Append(strconv.FormatInt(c.ID, 10), c.Code, c.Title, strconv.Itoa(c.CreditHours), formatID(c.DepartmentID),
			joinIDs(c.TeacherIDs), joinIDs(c.ClassIDs))
	}
	return t
}
