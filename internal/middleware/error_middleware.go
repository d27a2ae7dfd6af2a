package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// errorMapping is the response for one sentinel error
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: module not-found errors wrap ErrResourceNotFound, so they are listed first
var errorMappings = []errorMapping{
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrTeacherNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Teacher not found"},
	{apperrors.ErrStaffNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Staff member not found"},
	{apperrors.ErrDepartmentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Department not found"},
	{apperrors.ErrClassNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Class not found"},
	{apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
	{apperrors.ErrRoleNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Role not found"},
	{apperrors.ErrPermissionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Permission not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrInvalidReference, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Referenced record does not exist"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},

	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrStaleRecord, http.StatusConflict, dto.ErrorCodeConflict, "The record was changed by someone else, reload and try again"},
	{apperrors.ErrHasRelations, http.StatusConflict, dto.ErrorCodeConflict, "The record is still in use by other records"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid login or password"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},

	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "The account is disabled"},
}

// ErrorResponseFor converts err into the status and error envelope the API returns
func ErrorResponseFor(err error) (int, *dto.ErrorDetail) {
	var dup *apperrors.DuplicateError
	if errors.As(err, &dup) {
		detail := dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, dup.Error()).WithDetails(dup.Fields)
		if len(dup.Fields) == 1 {
			for field := range dup.Fields {
				detail.Field = field
			}
		}
		return http.StatusConflict, detail
	}

	var missing *apperrors.MissingIDsError
	if errors.As(err, &missing) {
		detail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Some records were not found, nothing was deleted").
			WithDetails(map[string]interface{}{"ids": missing.IDs})
		return http.StatusNotFound, detail
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)

		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			detail.Field = custom.Field
			if custom.Details != nil {
				detail.Details = custom.Details
			}
		}
		return m.status, detail
	}

	return http.StatusInternalServerError,
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").WithSeverity(dto.ErrorSeverityCritical)
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorResponseFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("Unhandled error")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
