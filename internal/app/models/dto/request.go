package dto

import (
	"strings"
	"time"
)

// SortOrder values
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListQuery carries the paging, search and sort parameters shared by all list endpoints
type ListQuery struct {
	Page      int    `form:"page" json:"page" binding:"omitempty,min=1,max=1000000"`
	PageSize  int    `form:"pageSize" json:"pageSize" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search" json:"search" binding:"omitempty,max=100"`
	SortBy    string `form:"sortBy" json:"sortBy" binding:"omitempty,max=50"`
	SortOrder string `form:"sortOrder" json:"sortOrder" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// Desc reports whether descending order was requested
func (q ListQuery) Desc() bool {
	return strings.EqualFold(q.SortOrder, SortDesc)
}

// Paging returns the requested page and page size
func (q ListQuery) Paging() (page, size int) {
	return q.Page, q.PageSize
}

// SearchTerm returns the trimmed search string
func (q ListQuery) SearchTerm() string {
	return strings.TrimSpace(q.Search)
}

// ExportQuery selects the export file format
type ExportQuery struct {
	Format string `form:"format" json:"format" binding:"omitempty,oneof=csv xlsx CSV XLSX excel"`
}

// BulkDeleteRequest lists the ids to remove
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1,max=500,dive,gt=0"`
}

// Versioned carries the optional optimistic-lock precondition of an update.
// When set, the update only applies if the stored updatedAt still matches.
type Versioned struct {
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt,omitempty" example:"2025-04-23T12:01:05.123Z"`
}
