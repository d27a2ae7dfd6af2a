package models

import "time"

// Course is a subject taught to one or more classes by one or more teachers
type Course struct {
	ID           int64     `json:"id" db:"id"`
	Code         string    `json:"code" db:"code" example:"MATH101"`
	Title        string    `json:"title" db:"title" example:"Core Mathematics"`
	Description  string    `json:"description" db:"description"`
	CreditHours  int       `json:"creditHours" db:"credit_hours" example:"4"`
	DepartmentID *int64    `json:"departmentId,omitempty" db:"department_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	TeacherIDs []int64 `json:"teacherIds" db:"-"`
	ClassIDs   []int64 `json:"classIds" db:"-"`
}
