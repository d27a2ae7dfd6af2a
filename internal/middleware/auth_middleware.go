package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextEmail    = "email"
	ContextRoleID   = "roleID"
	ContextRoleName = "roleName"
)

// AccessTokenCookie carries the access token for the admin pages
const AccessTokenCookie = "access_token"

// Authorizer decides whether a role holds a permission
type Authorizer interface {
	Require(ctx context.Context, roleID int64, roleName, permission string) error
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	authz      Authorizer
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, authz Authorizer) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		authz:      authz,
	}
}

// Identity is the authenticated caller
type Identity struct {
	UserID   int64
	Email    string
	RoleID   int64
	RoleName string
}

// CurrentIdentity returns the caller stored by JWTAuth or PageAuth
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	id := c.GetInt64(ContextUserID)
	if id == 0 {
		return Identity{}, false
	}
	return Identity{
		UserID:   id,
		Email:    c.GetString(ContextEmail),
		RoleID:   c.GetInt64(ContextRoleID),
		RoleName: c.GetString(ContextRoleName),
	}, true
}

// tokenFrom reads the Authorization header, falling back to the access token cookie
func tokenFrom(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractBearerToken(header)
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", auth.ErrInvalidFormat
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*auth.Claims, error) {
	token, err := tokenFrom(c)
	if err != nil {
		return nil, err
	}
	claims, err := m.jwtService.ValidateAndExtractClaims(token)
	if err != nil {
		return nil, err
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRoleID, claims.RoleID)
	c.Set(ContextRoleName, claims.RoleName)
	return claims, nil
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := m.authenticate(c); err != nil {
			var detail *dto.ErrorDetail
			switch {
			case errors.Is(err, auth.ErrInvalidFormat):
				detail = dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			case errors.Is(err, auth.ErrExpiredToken):
				detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token has expired")
			default:
				detail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}
		c.Next()
	}
}

// PageAuth is JWTAuth for the admin pages: failures redirect to the login page
func (m *AuthMiddleware) PageAuth(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := m.authenticate(c); err != nil {
			c.Redirect(http.StatusSeeOther, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// PermissionRequired rejects callers whose role lacks permission
func (m *AuthMiddleware) PermissionRequired(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		if err := m.authz.Require(c.Request.Context(), id.RoleID, id.RoleName, permission); err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
