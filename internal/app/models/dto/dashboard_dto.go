package dto

// DashboardStats holds record counts for the dashboard
type DashboardStats struct {
	Students         int64            `json:"students" example:"812"`
	StudentsByStatus map[string]int64 `json:"studentsByStatus"`
	Teachers         int64            `json:"teachers" example:"54"`
	Staff            int64            `json:"staff" example:"21"`
	Classes          int64            `json:"classes" example:"24"`
	Courses          int64            `json:"courses" example:"40"`
	Departments      int64            `json:"departments" example:"6"`
	Users            int64            `json:"users" example:"80"`
}
