package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/auth"
)

type authFixture struct {
	users  *fakeUsers
	tokens *fakeTokens
	jwt    *auth.JWTService
	svc    *AuthService
	user   *models.User
	logs   *bytes.Buffer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := auth.HashPassword("Passw0rd")
	require.NoError(t, err)

	f := &authFixture{
		users:  newFakeUsers(),
		tokens: newFakeTokens(),
		logs:   &bytes.Buffer{},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  15 * time.Minute,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "npresec-test",
		}),
	}
	f.user = f.users.put(&models.User{
		Email: "k.asante@npresec.edu.gh", Username: "kasante", Password: hash,
		RoleID: 2, RoleName: "teacher", IsActive: true,
	})
	perms := fakePermissionLister{superuser: "admin", grants: map[int64][]string{2: {"students:view"}}}
	f.svc = NewAuthService(f.users, f.tokens, perms, f.jwt, zerolog.New(f.logs))
	return f
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "KAsante", Password: "Passw0rd"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, f.user.ID, resp.User.ID)
	assert.Contains(t, f.tokens.tokens, resp.Token.RefreshToken)
	assert.True(t, f.users.lastLogin[f.user.ID])

	claims, err := f.jwt.ValidateToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "teacher", claims.RoleName)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Login: "k.asante@npresec.edu.gh", Password: "Passw0rd"})
	assert.NoError(t, err)
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "kasante", Password: "wrong"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Login: "nobody", Password: "Passw0rd"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	f.users.items[f.user.ID].IsActive = false
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Login: "kasante", Password: "Passw0rd"})
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))
	assert.Empty(t, f.tokens.tokens)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "kasante", Password: "Passw0rd"})
	require.NoError(t, err)
	old := login.Token.RefreshToken

	fresh, err := f.svc.RefreshToken(ctx, old)
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh.RefreshToken)
	assert.True(t, f.tokens.tokens[old].IsRevoked)

	_, err = f.svc.RefreshToken(ctx, old)
	assert.True(t, errors.Is(err, apperrors.ErrTokenRevoked))

	_, err = f.svc.RefreshToken(ctx, "never-issued")
	assert.True(t, errors.Is(err, apperrors.ErrTokenNotFound))
}

func TestAuthService_RefreshForDisabledAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "kasante", Password: "Passw0rd"})
	require.NoError(t, err)

	f.users.items[f.user.ID].IsActive = false
	_, err = f.svc.RefreshToken(ctx, login.Token.RefreshToken)
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))
	assert.Equal(t, 1, f.tokens.revokedAll[f.user.ID])
}

func TestAuthService_RefreshForDisabledAccountLogsRevokeFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "kasante", Password: "Passw0rd"})
	require.NoError(t, err)

	f.users.items[f.user.ID].IsActive = false
	f.tokens.revokeErr = errors.New("connection reset")
	_, err = f.svc.RefreshToken(ctx, login.Token.RefreshToken)
	assert.True(t, errors.Is(err, apperrors.ErrAccountDisabled))
	assert.Contains(t, f.logs.String(), "Failed to revoke refresh tokens")
	assert.Contains(t, f.logs.String(), "connection reset")
}

func TestAuthService_UnknownLoginStillComparesPassword(t *testing.T) {
	f := newAuthFixture(t)
	var hashes []string
	f.svc.checkPassword = func(hash, password string) bool {
		hashes = append(hashes, hash)
		return auth.CheckPassword(hash, password)
	}

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Login: "nobody", Password: "Passw0rd"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	assert.Equal(t, []string{auth.PlaceholderHash()}, hashes)

	_, err = f.svc.Login(context.Background(), &dto.LoginRequest{Login: "kasante", Password: "wrong"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	assert.Equal(t, f.user.Password, hashes[1])
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, &dto.LoginRequest{Login: "kasante", Password: "Passw0rd"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.Token.RefreshToken))
	assert.True(t, f.tokens.tokens[login.Token.RefreshToken].IsRevoked)
	assert.NoError(t, f.svc.Logout(ctx, "unknown"))
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture(t)

	me, err := f.svc.Me(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "teacher", me.Role)
	assert.Equal(t, []string{"students:view"}, me.Permissions)
	assert.False(t, me.Superuser)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, f.user.ID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "N3wPassword"})
	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "currentPassword", ce.Field)

	require.NoError(t, f.svc.ChangePassword(ctx, f.user.ID, &dto.ChangePasswordRequest{CurrentPassword: "Passw0rd", NewPassword: "N3wPassword"}))
	assert.True(t, auth.CheckPassword(f.users.items[f.user.ID].Password, "N3wPassword"))
	assert.Equal(t, 1, f.tokens.revokedAll[f.user.ID])

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Login: "kasante", Password: "Passw0rd"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}
