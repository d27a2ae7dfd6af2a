package models

import (
	"time"
)

// User is a login account. Students, teachers and staff may be linked to one.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Email       string     `json:"email" db:"email" example:"a.mensah@npresec.edu.gh"`
	Username    string     `json:"username" db:"username" example:"amensah"`
	Password    string     `json:"-" db:"password"`
	FirstName   string     `json:"firstName" db:"first_name" example:"Ama"`
	LastName    string     `json:"lastName" db:"last_name" example:"Mensah"`
	RoleID      int64      `json:"roleId" db:"role_id" example:"1"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// RoleName is joined from roles by reads
	RoleName string `json:"roleName,omitempty" db:"role_name"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RefreshToken is a persisted opaque refresh token
type RefreshToken struct {
	Token      string     `db:"token"`
	UserID     int64      `db:"user_id"`
	ExpiryDate time.Time  `db:"expiry_date"`
	IsRevoked  bool       `db:"is_revoked"`
	RevokedAt  *time.Time `db:"revoked_at"`
	CreatedAt  time.Time  `db:"created_at"`
}
