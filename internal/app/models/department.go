package models

import "time"

// Department groups teachers, staff, classes, courses and students
type Department struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name" example:"Science"`
	Code          string    `json:"code" db:"code" example:"SCI"`
	Description   string    `json:"description" db:"description"`
	HeadTeacherID *int64    `json:"headTeacherId,omitempty" db:"head_teacher_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}
