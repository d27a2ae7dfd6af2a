package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/validation"
)

type fakeAdmin struct {
	pending  []string
	seeded   bool
	created  *dto.CreateUserRequest
	role     string
	reset    [2]string
	closed   bool
	failWith error
}

func (f *fakeAdmin) Pending(context.Context) ([]string, error) { return f.pending, f.failWith }

func (f *fakeAdmin) Migrate(context.Context) (int, error) {
	if f.failWith != nil {
		return 1, f.failWith
	}
	return len(f.pending), nil
}

func (f *fakeAdmin) Seed(context.Context) error {
	f.seeded = true
	return f.failWith
}

func (f *fakeAdmin) CreateUser(_ context.Context, req *dto.CreateUserRequest, role string) (*models.User, error) {
	f.created, f.role = req, role
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &models.User{ID: 7, Username: req.Username}, nil
}

func (f *fakeAdmin) ResetPassword(_ context.Context, login, password string) error {
	f.reset = [2]string{login, password}
	return f.failWith
}

func (f *fakeAdmin) CleanupTokens(context.Context) (int64, error) { return 4, f.failWith }

func (f *fakeAdmin) Close() { f.closed = true }

func run(t *testing.T, admin *fakeAdmin, args ...string) (string, string, error) {
	t.Helper()
	var opened string
	root := NewRootCommand(func(configPath string) (Admin, error) {
		opened = configPath
		return admin, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), opened, err
}

func TestMigrateCommand(t *testing.T) {
	admin := &fakeAdmin{pending: []string{"sql/001_init.sql", "sql/002_list_indexes.sql"}}

	out, cfg, err := run(t, admin, "migrate", "--status", "-c", "/etc/npresec.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/npresec.yaml", cfg)
	assert.Contains(t, out, "2 pending migration(s)")
	assert.Contains(t, out, "sql/002_list_indexes.sql")
	assert.True(t, admin.closed)

	out, _, err = run(t, admin, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied 2 migration(s)")

	out, _, err = run(t, &fakeAdmin{}, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	_, _, err = run(t, &fakeAdmin{failWith: errors.New("syntax error")}, "migrate")
	assert.EqualError(t, err, "migration failed after 1 applied: syntax error")
}

func TestCreateUserCommand(t *testing.T) {
	admin := &fakeAdmin{}
	out, _, err := run(t, admin, "create-user",
		"--email", "a.mensah@npresec.edu.gh", "--username", "amensah",
		"--first-name", "Ama", "--last-name", "Mensah",
		"--password", "Passw0rd1", "--role", "teacher", "--inactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user amensah (id 7, role teacher)")
	require.NotNil(t, admin.created)
	assert.Equal(t, "teacher", admin.role)
	assert.Equal(t, "Ama", admin.created.FirstName)
	require.NotNil(t, admin.created.IsActive)
	assert.False(t, *admin.created.IsActive)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing role", []string{"create-user", "--email", "x@y.z", "--username", "xyz", "--first-name", "X",
			"--last-name", "Y", "--password", "Passw0rd1"}, "--role is required"},
		{"missing flags", []string{"create-user", "--role", "admin"}, "required flag(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, &fakeAdmin{}, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResetPasswordCommand(t *testing.T) {
	admin := &fakeAdmin{}
	out, _, err := run(t, admin, "reset-password", "--login", "amensah", "--password", "N3wPassword")
	require.NoError(t, err)
	assert.Equal(t, [2]string{"amensah", "N3wPassword"}, admin.reset)
	assert.Contains(t, out, "Password reset for amensah")

	_, _, err = run(t, &fakeAdmin{failWith: apperrors.ErrUserNotFound}, "reset-password", "--login", "ghost", "--password", "N3wPassword")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestSeedAndCleanupCommands(t *testing.T) {
	admin := &fakeAdmin{}
	out, _, err := run(t, admin, "seed")
	require.NoError(t, err)
	assert.True(t, admin.seeded)
	assert.Contains(t, out, "Default data is in place")

	out, _, err = run(t, admin, "cleanup-tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 4 refresh token(s)")
}

func TestValidationFailure(t *testing.T) {
	err := validationFailure(errors.New("plain"))
	assert.EqualError(t, err, "plain")

	err = validationFailure(validation.Struct(&dto.ResetPasswordRequest{}))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Contains(t, err.Error(), "newPassword")
}
