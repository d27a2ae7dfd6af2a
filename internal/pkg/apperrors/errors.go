package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrStaleRecord           = errors.New("record was modified by someone else")
	ErrHasRelations          = errors.New("record is still referenced by other records")
	ErrInvalidReference      = errors.New("referenced record does not exist")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Module not-found errors, all wrapping ErrResourceNotFound
var (
	ErrUserNotFound       = fmt.Errorf("user: %w", ErrResourceNotFound)
	ErrRoleNotFound       = fmt.Errorf("role: %w", ErrResourceNotFound)
	ErrPermissionNotFound = fmt.Errorf("permission: %w", ErrResourceNotFound)
	ErrDepartmentNotFound = fmt.Errorf("department: %w", ErrResourceNotFound)
	ErrClassNotFound      = fmt.Errorf("class: %w", ErrResourceNotFound)
	ErrCourseNotFound     = fmt.Errorf("course: %w", ErrResourceNotFound)
	ErrStudentNotFound    = fmt.Errorf("student: %w", ErrResourceNotFound)
	ErrTeacherNotFound    = fmt.Errorf("teacher: %w", ErrResourceNotFound)
	ErrStaffNotFound      = fmt.Errorf("staff: %w", ErrResourceNotFound)
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError reports a single invalid field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// NewInvalidReferenceError reports a foreign key field pointing at nothing
func NewInvalidReferenceError(field, message string) error {
	return &CustomError{
		Err:     ErrInvalidReference,
		Message: message,
		Field:   field,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// DuplicateError lists every unique field whose value is already taken.
// Fields maps the JSON field name to a human-readable message.
type DuplicateError struct {
	Entity string
	Fields map[string]string
}

// NewDuplicateError creates an empty DuplicateError for entity
func NewDuplicateError(entity string) *DuplicateError {
	return &DuplicateError{Entity: entity, Fields: make(map[string]string)}
}

// Add records a conflicting field using the standard message
func (e *DuplicateError) Add(field, label string) {
	e.Fields[field] = fmt.Sprintf("A %s with this %s already exists", e.Entity, label)
}

// HasConflicts reports whether any field was recorded
func (e *DuplicateError) HasConflicts() bool {
	return len(e.Fields) > 0
}

// OrNil returns e when it carries conflicts and nil otherwise
func (e *DuplicateError) OrNil() error {
	if e.HasConflicts() {
		return e
	}
	return nil
}

// Error joins the field messages in a stable order
func (e *DuplicateError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// Unwrap makes errors.Is(err, ErrResourceAlreadyExists) hold
func (e *DuplicateError) Unwrap() error {
	return ErrResourceAlreadyExists
}

// MissingIDsError is returned by bulk operations when some ids do not exist
type MissingIDsError struct {
	IDs []int64
}

func (e *MissingIDsError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = fmt.Sprint(id)
	}
	return "records not found: " + strings.Join(parts, ", ")
}

func (e *MissingIDsError) Unwrap() error {
	return ErrResourceNotFound
}
