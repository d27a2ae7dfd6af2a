package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
)

// UserService is what UserController needs
type UserService interface {
	records[models.User, dto.UserListQuery]
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	SetStatus(ctx context.Context, actorID, id int64, active bool) (*models.User, error)
	ResetPassword(ctx context.Context, id int64, req *dto.ResetPasswordRequest) error
	DeleteAs(ctx context.Context, actorID, id int64) error
	BulkDeleteAs(ctx context.Context, actorID int64, ids []int64) (*dto.BulkDeleteResponse, error)
}

// UserController handles login accounts
type UserController struct {
	userService UserService
}

// NewUserController creates a new user controller
func NewUserController(userService UserService) *UserController {
	return &UserController{userService: userService}
}

// actor returns the calling user's id or writes a 401
func actor(ctx *gin.Context) (int64, bool) {
	identity, found := middleware.CurrentIdentity(ctx)
	if !found {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return 0, false
	}
	return identity.UserID, true
}

// ListUsers lists accounts
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (max 100)" default(10)
// @Param search query string false "Matches email, username and names"
// @Param roleId query int false "Filter by role"
// @Param isActive query bool false "Filter by status"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.User]}
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	handleList[models.User, dto.UserListQuery](ctx, c.userService)
}

// GetUserByID retrieves an account
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUserByID(ctx *gin.Context) {
	handleGet[models.User, dto.UserListQuery](ctx, c.userService)
}

// CreateUser creates an account
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Account information"
// @Success 201 {object} dto.APIResponse{data=models.User}
// @Failure 400 {object} dto.ErrorResponse "Invalid data, weak password or unknown role"
// @Failure 409 {object} dto.ErrorResponse "Email or username already taken"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	handleCreate(ctx, c.userService.Create, "User created successfully")
}

// UpdateUser edits an account
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Account information"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 409 {object} dto.ErrorResponse "Duplicate values, stale record or last superuser"
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	handleUpdate(ctx, c.userService.Update, "User updated successfully")
}

// SetUserStatus activates or deactivates an account
// @Summary Activate or deactivate a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UserStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 409 {object} dto.ErrorResponse "Own account or last superuser"
// @Router /users/{id}/status [patch]
func (c *UserController) SetUserStatus(ctx *gin.Context) {
	actorID, found := actor(ctx)
	if !found {
		return
	}
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.UserStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	user, err := c.userService.SetStatus(ctx.Request.Context(), actorID, id, *req.IsActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message := "User deactivated"
	if user.IsActive {
		message = "User activated"
	}
	ok(ctx, http.StatusOK, user, message)
}

// ResetUserPassword sets a new password for an account
// @Summary Reset a user's password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse
// @Router /users/{id}/password [put]
func (c *UserController) ResetUserPassword(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.ResetPasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.userService.ResetPassword(ctx.Request.Context(), id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, nil, "Password reset successfully")
}

// DeleteUser deletes an account other than the caller's
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.ErrorResponse "Own account, last superuser or linked profile"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	actorID, found := actor(ctx)
	if !found {
		return
	}
	handleDelete(ctx, func(reqCtx context.Context, id int64) error {
		return c.userService.DeleteAs(reqCtx, actorID, id)
	}, "User deleted successfully")
}

// BulkDeleteUsers deletes several accounts at once
// @Summary Delete several users
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "User IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteResponse}
// @Router /users/bulk-delete [post]
func (c *UserController) BulkDeleteUsers(ctx *gin.Context) {
	actorID, found := actor(ctx)
	if !found {
		return
	}
	handleBulkDelete(ctx, func(reqCtx context.Context, ids []int64) (*dto.BulkDeleteResponse, error) {
		return c.userService.BulkDeleteAs(reqCtx, actorID, ids)
	})
}

// ExportUsers downloads the filtered accounts
// @Summary Export users
// @Tags users
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /users/export [get]
func (c *UserController) ExportUsers(ctx *gin.Context) {
	handleExport[models.User, dto.UserListQuery](ctx, c.userService, "users")
}
