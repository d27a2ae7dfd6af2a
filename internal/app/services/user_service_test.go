package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/auth"
)

type userFixture struct {
	users   *fakeUsers
	tokens  *fakeTokens
	roles   *fakeRoles
	admin   *models.Role
	teacher *models.Role
	svc     *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{users: newFakeUsers(), tokens: newFakeTokens(), roles: newFakeRoles()}
	f.admin = f.roles.put(&models.Role{Name: "admin"})
	f.teacher = f.roles.put(&models.Role{Name: "teacher"})
	f.svc = NewUserService(f.users, f.tokens, f.roles, "admin", 100)
	return f
}

func (f *userFixture) putUser(username string, role *models.Role, active bool) *models.User {
	return f.users.put(&models.User{
		Email:    username + "@npresec.edu.gh",
		Username: username,
		RoleID:   role.ID,
		RoleName: role.Name,
		IsActive: active,
	})
}

func TestUserService_Create(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	u, err := f.svc.Create(ctx, &dto.CreateUserRequest{
		Email: " A.Mensah@NPRESEC.edu.gh ", Username: "AMensah", Password: "Passw0rd",
		FirstName: "Ama", LastName: "Mensah", RoleID: f.teacher.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "a.mensah@npresec.edu.gh", u.Email)
	assert.Equal(t, "amensah", u.Username)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "Passw0rd", u.Password)
	assert.True(t, auth.CheckPassword(u.Password, "Passw0rd"))

	tests := []struct {
		name string
		req  *dto.CreateUserRequest
		is   error
	}{
		{"weak password", &dto.CreateUserRequest{Email: "x@y.z", Username: "xyz", Password: "password", RoleID: f.teacher.ID}, apperrors.ErrValidationFailed},
		{"unknown role", &dto.CreateUserRequest{Email: "x@y.z", Username: "xyz", Password: "Passw0rd", RoleID: 99}, apperrors.ErrInvalidReference},
		{"taken username", &dto.CreateUserRequest{Email: "x@y.z", Username: "amensah", Password: "Passw0rd", RoleID: f.teacher.ID}, apperrors.ErrResourceAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.req)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
		})
	}
}

func TestUserService_LastSuperuserIsProtected(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	root := f.putUser("root", f.admin, true)
	actor := f.putUser("headmaster", f.teacher, true)

	_, err := f.svc.SetStatus(ctx, actor.ID, root.ID, false)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	_, err = f.svc.Update(ctx, root.ID, &dto.UpdateUserRequest{
		Email: root.Email, Username: root.Username, FirstName: "R", LastName: "T", RoleID: f.teacher.ID,
	})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	assert.True(t, errors.Is(f.svc.DeleteAs(ctx, actor.ID, root.ID), apperrors.ErrConflict))

	f.putUser("deputy", f.admin, true)
	_, err = f.svc.SetStatus(ctx, actor.ID, root.ID, false)
	assert.NoError(t, err)
}

func TestUserService_BulkDeleteKeepsOneSuperuser(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	root := f.putUser("root", f.admin, true)
	deputy := f.putUser("deputy", f.admin, true)
	actor := f.putUser("headmaster", f.teacher, true)

	_, err := f.svc.BulkDeleteAs(ctx, actor.ID, []int64{root.ID, deputy.ID})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Len(t, f.users.items, 3)

	resp, err := f.svc.BulkDeleteAs(ctx, actor.ID, []int64{deputy.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestUserService_SelfProtection(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.putUser("root", f.admin, true)
	me := f.putUser("deputy", f.admin, true)

	_, err := f.svc.SetStatus(ctx, me.ID, me.ID, false)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	assert.True(t, errors.Is(f.svc.DeleteAs(ctx, me.ID, me.ID), apperrors.ErrConflict))

	_, err = f.svc.BulkDeleteAs(ctx, me.ID, []int64{1, me.ID})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Len(t, f.users.items, 2)
}

func TestUserService_DeactivationEndsSessions(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	actor := f.putUser("root", f.admin, true)
	u := f.putUser("kofi", f.teacher, true)

	got, err := f.svc.SetStatus(ctx, actor.ID, u.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 1, f.tokens.revokedAll[u.ID])

	got, err = f.svc.SetStatus(ctx, actor.ID, u.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, 1, f.tokens.revokedAll[u.ID])
}

func TestUserService_ResetPassword(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	u := f.putUser("kofi", f.teacher, true)

	err := f.svc.ResetPassword(ctx, u.ID, &dto.ResetPasswordRequest{NewPassword: "short"})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	require.NoError(t, f.svc.ResetPassword(ctx, u.ID, &dto.ResetPasswordRequest{NewPassword: "N3wPassword"}))
	assert.True(t, auth.CheckPassword(f.users.items[u.ID].Password, "N3wPassword"))
	assert.Equal(t, 1, f.tokens.revokedAll[u.ID])

	err = f.svc.ResetPassword(ctx, 404, &dto.ResetPasswordRequest{NewPassword: "N3wPassword"})
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}
