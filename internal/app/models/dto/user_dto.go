package dto

import (
	"strconv"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// CreateUserRequest is the body of an admin-created account
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=255" example:"a.mensah@npresec.edu.gh"`
	Username  string `json:"username" binding:"required,min=3,max=50,excludesall= " example:"amensah"`
	Password  string `json:"password" binding:"required,strongpassword" example:"Passw0rd"`
	FirstName string `json:"firstName" binding:"required,notblank,max=100"`
	LastName  string `json:"lastName" binding:"required,notblank,max=100"`
	RoleID    int64  `json:"roleId" binding:"required,gt=0" example:"2"`
	IsActive  *bool  `json:"isActive"`
}

// UpdateUserRequest edits an account; the password is changed separately
type UpdateUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Username  string `json:"username" binding:"required,min=3,max=50,excludesall= "`
	FirstName string `json:"firstName" binding:"required,notblank,max=100"`
	LastName  string `json:"lastName" binding:"required,notblank,max=100"`
	RoleID    int64  `json:"roleId" binding:"required,gt=0"`
	IsActive  *bool  `json:"isActive"`
	Versioned
}

// UserStatusRequest activates or deactivates an account
type UserStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// ResetPasswordRequest is an administrator setting a new password
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,strongpassword"`
}

// UserListQuery filters the user list
type UserListQuery struct {
	ListQuery
	RoleID   *int64 `form:"roleId" binding:"omitempty,gt=0"`
	IsActive *bool  `form:"isActive"`
}

// UserTable converts users into an export table
func UserTable(items []*models.User) *export.Table {
	t := export.NewTable("Users", "ID", "Email", "Username", "First Name", "Last Name", "Role", "Active", "Last Login")
	for _, u := range items {
		role := u.RoleName
		if role == "" {
			role = strconv.FormatInt(u.RoleID, 10)
		}
		t.Append(strconv.FormatInt(u.ID, 10), u.Email, u.Username, u.FirstName, u.LastName, role,
			strconv.FormatBool(u.IsActive), formatTimestamp(u.LastLoginAt))
	}
	return t
}
