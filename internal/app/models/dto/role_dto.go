package dto

import (
	"strconv"
	"strings"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
)

// RoleRequest is the create/update body of a role; PermissionIDs replaces the current grants
type RoleRequest struct {
	Name          string  `json:"name" binding:"required,notblank,max=50" example:"teacher"`
	Description   string  `json:"description" binding:"omitempty,max=255"`
	PermissionIDs []int64 `json:"permissionIds" binding:"omitempty,dive,gt=0"`
	Versioned
}

// RoleListQuery filters the role list
type RoleListQuery struct {
	ListQuery
}

// PermissionUpdateRequest edits the only mutable permission field
type PermissionUpdateRequest struct {
	Description string `json:"description" binding:"max=255"`
}

// PermissionListQuery filters the permission list
type PermissionListQuery struct {
	ListQuery
	Resource string `form:"resource" binding:"omitempty,max=50" example:"students"`
}

// RoleTable converts roles into an export table
func RoleTable(items []*models.Role) *export.Table {
	t := export.NewTable("Roles", "ID", "Name", "Description", "Permissions")
	for _, r := range items {
		t.Append(strconv.FormatInt(r.ID, 10), r.Name, r.Description, strings.Join(r.PermissionNames(), ";"))
	}
	return t
}

// PermissionTable converts permissions into an export table
func PermissionTable(items []*models.Permission) *export.Table {
	t := export.NewTable("Permissions", "ID", "Name", "Description")
	for _, p := range items {
		t.Append(strconv.FormatInt(p.ID, 10), p.Name, p.Description)
	}
	return t
}
