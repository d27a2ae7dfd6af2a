package auth

import (
	"sort"
	"strings"
)

// Permission actions
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

// Permission resources, one per admin module
const (
	ResourceUsers       = "users"
	ResourceRoles       = "roles"
	ResourcePermissions = "permissions"
	ResourceDepartments = "departments"
	ResourceClasses     = "classes"
	ResourceCourses     = "courses"
	ResourceStudents    = "students"
	ResourceTeachers    = "teachers"
	ResourceStaff       = "staff"
	ResourceDashboard   = "dashboard"
)

// Resources lists every protected resource
var Resources = []string{
	ResourceUsers, ResourceRoles, ResourcePermissions, ResourceDepartments, ResourceClasses,
	ResourceCourses, ResourceStudents, ResourceTeachers, ResourceStaff, ResourceDashboard,
}

// Actions lists every action a permission can grant
var Actions = []string{ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionExport}

// Name builds a permission name such as "students:create"
func Name(resource, action string) string {
	return resource + ":" + action
}

// Split is the inverse of Name
func Split(permission string) (resource, action string) {
	resource, action, _ = strings.Cut(permission, ":")
	return resource, action
}

// Definition is a seeded permission
type Definition struct {
	Name        string
	Description string
}

// Catalog returns every permission the application checks, sorted by name.
// The dashboard only has a view permission and permissions are never created or deleted through the API.
func Catalog() []Definition {
	var defs []Definition
	for _, res := range Resources {
		for _, act := range Actions {
			switch {
			case res == ResourceDashboard && act != ActionView:
				continue
			case res == ResourcePermissions && (act == ActionCreate || act == ActionDelete):
				continue
			}
			defs = append(defs, Definition{
				Name:        Name(res, act),
				Description: strings.ToUpper(act[:1]) + act[1:] + " " + res,
			})
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// DefaultGrants are the permissions seeded for the built-in non-admin roles.
// The superuser role needs no grants.
var DefaultGrants = map[string][]string{
	"teacher": {
		Name(ResourceDashboard, ActionView),
		Name(ResourceStudents, ActionView),
		Name(ResourceStudents, ActionExport),
		Name(ResourceClasses, ActionView),
		Name(ResourceCourses, ActionView),
		Name(ResourceDepartments, ActionView),
		Name(ResourceTeachers, ActionView),
	},
	"staff": {
		Name(ResourceDashboard, ActionView),
		Name(ResourceStudents, ActionView),
		Name(ResourceStudents, ActionCreate),
		Name(ResourceStudents, ActionUpdate),
		Name(ResourceStudents, ActionExport),
		Name(ResourceTeachers, ActionView),
		Name(ResourceStaff, ActionView),
		Name(ResourceClasses, ActionView),
		Name(ResourceCourses, ActionView),
		Name(ResourceDepartments, ActionView),
	},
}
