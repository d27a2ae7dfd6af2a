package models

import "time"

// Permission is a single "<resource>:<action>" grant
type Permission struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" example:"students:create"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Role groups permissions; every user has exactly one role
type Role struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" example:"teacher"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	Permissions []*Permission `json:"permissions,omitempty" db:"-"`
}

// PermissionNames lists the names of the loaded permissions
func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}
