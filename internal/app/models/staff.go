package models

import "time"

// Staff is a non-teaching employee
type Staff struct {
	ID           int64            `json:"id" db:"id"`
	EmployeeID   string           `json:"employeeId" db:"employee_id" example:"STF0007"`
	FirstName    string           `json:"firstName" db:"first_name"`
	LastName     string           `json:"lastName" db:"last_name"`
	Email        string           `json:"email" db:"email"`
	Phone        *string          `json:"phone,omitempty" db:"phone"`
	Gender       Gender           `json:"gender" db:"gender"`
	Position     string           `json:"position" db:"position" example:"Bursar"`
	DepartmentID *int64           `json:"departmentId,omitempty" db:"department_id"`
	HireDate     *time.Time       `json:"hireDate,omitempty" db:"hire_date"`
	Status       EmploymentStatus `json:"status" db:"status"`
	UserID       *int64           `json:"userId,omitempty" db:"user_id"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time        `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last"
func (s *Staff) FullName() string {
	return s.FirstName + " " + s.LastName
}
