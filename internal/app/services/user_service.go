package services

import (
	"context"
	"strings"
	"time"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/auth"
	"github.com/Azechum30/npresec-app/internal/pkg/helpers"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// UserStore is the account persistence the services need
type UserStore interface {
	store[models.User, dto.UserListQuery]
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User, expected *time.Time) error
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	TouchLastLogin(ctx context.Context, id int64) error
	CountActiveByRole(ctx context.Context, roleID int64) (int64, error)
}

// TokenStore is the refresh token persistence the services need
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldToken, newToken string, userID int64, expiryDate time.Time) error
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// RoleLookup resolves a role id
type RoleLookup interface {
	idChecker
	GetByID(ctx context.Context, id int64) (*models.Role, error)
}

// UserService handles login accounts
type UserService struct {
	recordService[models.User, dto.UserListQuery]
	users         UserStore
	tokens        TokenStore
	roles         RoleLookup
	superuserRole string
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, tokens TokenStore, roles RoleLookup, superuserRole string, exportLimit int) *UserService {
	return &UserService{
		recordService: newRecordService[models.User, dto.UserListQuery](users, "user", exportLimit, dto.UserTable),
		users:         users,
		tokens:        tokens,
		roles:         roles,
		superuserRole: superuserRole,
	}
}

func (s *UserService) validate(ctx context.Context, u *models.User, excludeID int64) error {
	if err := checkReferences(ctx, ref("roleId", "role", &u.RoleID, s.roles)); err != nil {
		return err
	}
	return checkDuplicates(ctx, s.users, "user", excludeID,
		unique("email", "email", u.Email),
		unique("username", "username", u.Username),
	)
}

// Create creates an account with a hashed password
func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	if !auth.PasswordMeetsPolicy(req.Password) {
		return nil, apperrors.NewValidationError("password", auth.PasswordPolicyMessage)
	}

	u := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Username:  strings.ToLower(strings.TrimSpace(req.Username)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		RoleID:    req.RoleID,
		IsActive:  req.IsActive == nil || *req.IsActive,
	}
	if err := s.validate(ctx, u, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u.Password = hash

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info().Int64("userID", u.ID).Str("username", u.Username).Msg("User created")
	return u, nil
}

// Update edits an account. The last active superuser cannot lose the role or be deactivated.
func (s *UserService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:        id,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Username:  strings.ToLower(strings.TrimSpace(req.Username)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		RoleID:    req.RoleID,
		IsActive:  current.IsActive,
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if err := s.validate(ctx, u, id); err != nil {
		return nil, err
	}
	if u.RoleID != current.RoleID || !u.IsActive {
		if err := s.guardLastSuperuser(ctx, current); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, u, req.ExpectedUpdatedAt); err != nil {
		return nil, err
	}
	if current.IsActive && !u.IsActive {
		s.revokeSessions(ctx, id)
	}
	return u, nil
}

// SetStatus activates or deactivates an account. Deactivation ends the account's sessions.
func (s *UserService) SetStatus(ctx context.Context, actorID, id int64, active bool) (*models.User, error) {
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !active {
		if actorID == id {
			return nil, apperrors.NewConflictError("You cannot deactivate your own account")
		}
		if err := s.guardLastSuperuser(ctx, current); err != nil {
			return nil, err
		}
	}

	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		s.revokeSessions(ctx, id)
	}
	logger.Info().Int64("userID", id).Bool("active", active).Int64("by", actorID).Msg("User status changed")
	return s.users.GetByID(ctx, id)
}

// ResetPassword sets a new password chosen by an administrator and ends the account's sessions
func (s *UserService) ResetPassword(ctx context.Context, id int64, req *dto.ResetPasswordRequest) error {
	if !auth.PasswordMeetsPolicy(req.NewPassword) {
		return apperrors.NewValidationError("newPassword", auth.PasswordPolicyMessage)
	}
	if err := s.requireExists(ctx, id); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	s.revokeSessions(ctx, id)
	logger.Info().Int64("userID", id).Msg("Password reset by administrator")
	return nil
}

// DeleteAs removes an account other than the actor's own
func (s *UserService) DeleteAs(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return apperrors.NewConflictError("You cannot delete your own account")
	}
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guardLastSuperuser(ctx, current); err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

// BulkDeleteAs removes every account or nothing; the actor's own id is refused
func (s *UserService) BulkDeleteAs(ctx context.Context, actorID int64, ids []int64) (*dto.BulkDeleteResponse, error) {
	ids = helpers.DedupeIDs(ids)
	for _, id := range ids {
		if id == actorID {
			return nil, apperrors.NewConflictError("You cannot delete your own account")
		}
	}

	var superuserRoleID, superusers int64
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if u.IsActive && u.RoleName == s.superuserRole {
			superuserRoleID = u.RoleID
			superusers++
		}
	}
	if superusers > 0 {
		n, err := s.users.CountActiveByRole(ctx, superuserRoleID)
		if err != nil {
			return nil, err
		}
		if superusers >= n {
			return nil, apperrors.NewConflictError("At least one active " + s.superuserRole + " account must remain")
		}
	}
	return s.BulkDelete(ctx, ids)
}

// guardLastSuperuser refuses to remove the only active account holding the superuser role
func (s *UserService) guardLastSuperuser(ctx context.Context, u *models.User) error {
	if !u.IsActive || u.RoleName != s.superuserRole {
		return nil
	}
	n, err := s.users.CountActiveByRole(ctx, u.RoleID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperrors.NewConflictError("At least one active " + s.superuserRole + " account must remain")
	}
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID int64) {
	if err := s.tokens.RevokeAllUserTokens(ctx, userID); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Failed to revoke refresh tokens")
	}
}
