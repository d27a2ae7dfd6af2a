package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/auth"
)

// PermissionLister resolves the effective permissions of a role
type PermissionLister interface {
	Permissions(ctx context.Context, roleID int64, roleName string) ([]string, error)
	IsSuperuser(roleName string) bool
}

// AuthService handles authentication operations
type AuthService struct {
	users       UserStore
	tokens      TokenStore
	permissions PermissionLister
	jwtService  *auth.JWTService
	logger      zerolog.Logger

	checkPassword func(hash, password string) bool
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, tokens TokenStore, permissions PermissionLister, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		permissions: permissions,
		jwtService:  jwtService,
		logger:      logger,

		checkPassword: auth.CheckPassword,
	}
}

func tokenResponse(pair *auth.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(pair.ExpiresIn),
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
	}
}

func subjectOf(u *models.User) auth.Subject {
	return auth.Subject{UserID: u.ID, Email: u.Email, RoleID: u.RoleID, RoleName: u.RoleName}
}

// Login authenticates by email or username and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.checkPassword(auth.PlaceholderHash(), req.Password)
			s.logger.Info().Str("login", req.Login).Msg("Login attempt for unknown account")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.checkPassword(user.Password, req.Password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.jwtService.GenerateTokenPair(subjectOf(user))
	if err != nil {
		return nil, err
	}
	if err := s.tokens.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", user.RoleName).Msg("User logged in")
	return &dto.AuthResponse{Token: tokenResponse(pair), User: user}, nil
}

// RefreshToken revokes refreshToken and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.tokens.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		s.revokeSessions(ctx, user.ID)
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.jwtService.GenerateTokenPair(subjectOf(user))
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Rotate(ctx, refreshToken, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		if errors.Is(err, apperrors.ErrTokenRevoked) {
			s.logger.Warn().Int64("userID", user.ID).Msg("Refresh token reused")
		}
		return nil, err
	}

	resp := tokenResponse(pair)
	return &resp, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokens.RevokeToken(ctx, refreshToken)
	if errors.Is(err, apperrors.ErrTokenNotFound) {
		return nil
	}
	return err
}

// Me returns the caller with their effective permissions
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.MeResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms, err := s.permissions.Permissions(ctx, user.RoleID, user.RoleName)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{
		User:        user,
		Role:        user.RoleName,
		Permissions: perms,
		Superuser:   s.permissions.IsSuperuser(user.RoleName),
	}, nil
}

// ChangePassword changes the caller's password and signs out every session
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewValidationError("currentPassword", "Current password is incorrect")
	}
	if !auth.PasswordMeetsPolicy(req.NewPassword) {
		return apperrors.NewValidationError("newPassword", auth.PasswordPolicyMessage)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}

func (s *AuthService) revokeSessions(ctx context.Context, userID int64) {
	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to revoke refresh tokens")
	}
}
