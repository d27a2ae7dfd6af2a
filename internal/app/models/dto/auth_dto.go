package dto

import "github.com/Azechum30/npresec-app/internal/app/models"

// LoginRequest represents login credentials; Login is an email or a username
type LoginRequest struct {
	Login    string `json:"login" binding:"required,notblank,max=255" example:"admin@npresec.edu.gh"`
	Password string `json:"password" binding:"required" example:"Passw0rd"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"3600"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"2592000"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required,uuid"`
}

// ChangePasswordRequest changes the caller's own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,strongpassword,nefield=CurrentPassword"`
}

// MeResponse is the authenticated caller with their effective permissions
type MeResponse struct {
	User        *models.User `json:"user"`
	Role        string       `json:"role" example:"admin"`
	Permissions []string     `json:"permissions"`
	Superuser   bool         `json:"superuser"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *models.User  `json:"user"`
}
