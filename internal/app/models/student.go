package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID            int64         `json:"id" db:"id"`
	IndexNumber   string        `json:"indexNumber" db:"index_number" example:"NPR250001"`
	FirstName     string        `json:"firstName" db:"first_name"`
	MiddleName    string        `json:"middleName" db:"middle_name"`
	LastName      string        `json:"lastName" db:"last_name"`
	Email         *string       `json:"email,omitempty" db:"email"`
	Phone         *string       `json:"phone,omitempty" db:"phone"`
	Gender        Gender        `json:"gender" db:"gender" example:"FEMALE"`
	DateOfBirth   *time.Time    `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Address       string        `json:"address" db:"address"`
	GuardianName  string        `json:"guardianName" db:"guardian_name"`
	GuardianPhone string        `json:"guardianPhone" db:"guardian_phone"`
	ClassID       *int64        `json:"classId,omitempty" db:"class_id"`
	DepartmentID  *int64        `json:"departmentId,omitempty" db:"department_id"`
	AdmissionDate time.Time     `json:"admissionDate" db:"admission_date"`
	Status        StudentStatus `json:"status" db:"status" example:"ACTIVE"`
	UserID        *int64        `json:"userId,omitempty" db:"user_id"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// FullName joins first, middle and last names
func (s *Student) FullName() string {
	if s.MiddleName == "" {
		return s.FirstName + " " + s.LastName
	}
	return s.FirstName + " " + s.MiddleName + " " + s.LastName
}
