package dto

import (
	"strconv"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// TeacherRequest is the create/update body of a teacher
type TeacherRequest struct {
	EmployeeID     string                  `json:"employeeId" binding:"required,notblank,max=20" example:"TCH0042"`
	FirstName      string                  `json:"firstName" binding:"required,notblank,max=100"`
	LastName       string                  `json:"lastName" binding:"required,notblank,max=100"`
	Email          string                  `json:"email" binding:"required,email,max=255"`
	Phone          *string                 `json:"phone" binding:"omitempty,phone"`
	Gender         models.Gender           `json:"gender" binding:"required,oneof=MALE FEMALE"`
	DateOfBirth    *string                 `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Qualification  string                  `json:"qualification" binding:"omitempty,max=150" example:"B.Ed Mathematics"`
	Specialization string                  `json:"specialization" binding:"omitempty,max=150"`
	DepartmentID   *int64                  `json:"departmentId" binding:"omitempty,gt=0"`
	HireDate       *string                 `json:"hireDate" binding:"omitempty,datetime=2006-01-02"`
	Status         models.EmploymentStatus `json:"status" binding:"omitempty,oneof=ACTIVE ON_LEAVE RETIRED TERMINATED"`
	UserID         *int64                  `json:"userId" binding:"omitempty,gt=0"`
	Versioned
}

// TeacherListQuery filters the teacher list
type TeacherListQuery struct {
	ListQuery
	DepartmentID *int64 `form:"departmentId" binding:"omitempty,gt=0"`
	Status       string `form:"status" binding:"omitempty,oneof=ACTIVE ON_LEAVE RETIRED TERMINATED"`
}

// TeacherTable converts teachers into an export table
func TeacherTable(items []*models.Teacher) *export.Table {
	t := export.NewTable("Teachers", "ID", "Employee ID", "First Name", "Last Name", "Email", "Phone", "Gender",
		"Qualification", "Specialization", "Department ID", "Hire Date", "Status", "Course IDs")
	for _, x := range items {
		t.Append(strconv.FormatInt(x.ID, 10), x.EmployeeID, x.FirstName, x.LastName, x.Email, formatString(x.Phone),
			string(x.Gender), x.Qualification, x.Specialization, formatID(x.DepartmentID), formatDate(x.HireDate),
			string(x.Status), joinIDs(x.CourseIDs))
	}
	return t
}
