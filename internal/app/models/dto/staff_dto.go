package dto

import (
	"strconv"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// StaffRequest is the create/update body of a non-teaching staff member
type StaffRequest struct {
	EmployeeID   string                  `json:"employeeId" binding:"required,notblank,max=20" example:"STF0007"`
	FirstName    string                  `json:"firstName" binding:"required,notblank,max=100"`
	LastName     string                  `json:"lastName" binding:"required,notblank,max=100"`
	Email        string                  `json:"email" binding:"required,email,max=255"`
	Phone        *string                 `json:"phone" binding:"omitempty,phone"`
	Gender       models.Gender           `json:"gender" binding:"required,oneof=MALE FEMALE"`
	Position     string                  `json:"position" binding:"required,notblank,max=100" example:"Bursar"`
	DepartmentID *int64                  `json:"departmentId" binding:"omitempty,gt=0"`
	HireDate     *string                 `json:"hireDate" binding:"omitempty,datetime=2006-01-02"`
	Status       models.EmploymentStatus `json:"status" binding:"omitempty,oneof=ACTIVE ON_LEAVE RETIRED TERMINATED"`
	UserID       *int64                  `json:"userId" binding:"omitempty,gt=0"`
	Versioned
}

// StaffListQuery filters the staff list
type StaffListQuery struct {
	ListQuery
	DepartmentID *int64 `form:"departmentId" binding:"omitempty,gt=0"`
	Position     string `form:"position" binding:"omitempty,max=100"`
	Status       string `form:"status" binding:"omitempty,oneof=ACTIVE ON_LEAVE RETIRED TERMINATED"`
}

// StaffTable converts staff into an export table
func StaffTable(items []*models.Staff) *export.Table {
	t := export.NewTable("Staff", "ID", "Employee ID", "First Name", "Last Name", "Email", "Phone", "Gender",
		"Position", "Department ID", "Hire Date", "Status")
	for _, x := range items {
		t.Append(strconv.FormatInt(x.ID, 10), x.EmployeeID, x.FirstName, x.LastName, x.Email, formatString(x.Phone),
			string(x.Gender), x.Position, formatID(x.DepartmentID), formatDate(x.HireDate), string(x.Status))
	}
	return t
}
