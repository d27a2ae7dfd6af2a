package models

import "time"

// Teacher defines the teacher model based on the 'teachers' table
type Teacher struct {
	ID             int64            `json:"id" db:"id"`
	EmployeeID     string           `json:"employeeId" db:"employee_id" example:"TCH0042"`
	FirstName      string           `json:"firstName" db:"first_name"`
	LastName       string           `json:"lastName" db:"last_name"`
	Email          string           `json:"email" db:"email"`
	Phone          *string          `json:"phone,omitempty" db:"phone"`
	Gender         Gender           `json:"gender" db:"gender"`
	DateOfBirth    *time.Time       `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Qualification  string           `json:"qualification" db:"qualification"`
	Specialization string           `json:"specialization" db:"specialization"`
	DepartmentID   *int64           `json:"departmentId,omitempty" db:"department_id"`
	HireDate       *time.Time       `json:"hireDate,omitempty" db:"hire_date"`
	Status         EmploymentStatus `json:"status" db:"status"`
	UserID         *int64           `json:"userId,omitempty" db:"user_id"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`

	CourseIDs []int64 `json:"courseIds" db:"-"`
}

// FullName returns "First Last"
func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}
