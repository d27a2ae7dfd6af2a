package models

import "time"

// Class is a form/year group students are placed in
type Class struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name" example:"Form 1 Science A"`
	Code           string    `json:"code" db:"code" example:"1SA"`
	Level          int       `json:"level" db:"level" example:"1"`
	DepartmentID   *int64    `json:"departmentId,omitempty" db:"department_id"`
	ClassTeacherID *int64    `json:"classTeacherId,omitempty" db:"class_teacher_id"`
	Capacity       *int      `json:"capacity,omitempty" db:"capacity"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// StudentCount is filled by list queries
	StudentCount int `json:"studentCount" db:"student_count"`
}
