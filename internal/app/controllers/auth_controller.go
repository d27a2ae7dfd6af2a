package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
)

// AuthService is what AuthController needs
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID int64) (*dto.MeResponse, error)
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

// AuthController handles authentication related operations
type AuthController struct {
	authService  AuthService
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService AuthService, secureCookie bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// setAccessCookie mirrors the access token into an HttpOnly cookie for the admin pages
func (c *AuthController) setAccessCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", "", c.secureCookie, true)
}

// Login handles user login
// @Summary User login
// @Description Authenticates with an email or username. The access token is also set as an HttpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("login", req.Login).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setAccessCookie(ctx, resp.Token.AccessToken, int(resp.Token.ExpiresIn))
	c.logger.Info().Int64("userID", resp.User.ID).Msg("User logged in successfully")
	ok(ctx, http.StatusOK, resp, "Login successful")
}

// RefreshToken handles refresh token request
// @Summary Refresh access token
// @Description Rotates the refresh token and issues a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed successfully"
// @Failure 401 {object} dto.ErrorResponse "Invalid, revoked or expired refresh token"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Refresh token failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setAccessCookie(ctx, resp.AccessToken, int(resp.ExpiresIn))
	ok(ctx, http.StatusOK, resp, "Token refreshed successfully")
}

// Logout revokes a refresh token and clears the session cookie
// @Summary Logout
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token to revoke"
// @Success 200 {object} dto.APIResponse "Logged out"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authService.Logout(ctx.Request.Context(), req.RefreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.setAccessCookie(ctx, "", -1)
	ok(ctx, http.StatusOK, nil, "Logged out")
}

// Me returns the caller with their effective permissions
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MeResponse}
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	userID, found := actor(ctx)
	if !found {
		return
	}
	me, err := c.authService.Me(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, http.StatusOK, me, "")
}

// ChangePassword changes the caller's own password and signs out every session
// @Summary Change own password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Wrong current password or weak new password"
// @Router /auth/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	userID, found := actor(ctx)
	if !found {
		return
	}
	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authService.ChangePassword(ctx.Request.Context(), userID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.setAccessCookie(ctx, "", -1)
	ok(ctx, http.StatusOK, nil, "Password changed, please log in again")
}
