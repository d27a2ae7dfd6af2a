package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appAuth "github.com/Azechum30/npresec-app/internal/app/auth"
	appModels "github.com/Azechum30/npresec-app/internal/app/models"
	appRepos "github.com/Azechum30/npresec-app/internal/app/repositories"
	"github.com/Azechum30/npresec-app/internal/config"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/auth"
)

// PermissionStore inserts catalog permissions
type PermissionStore interface {
	Upsert(ctx context.Context, name, description string) (int64, error)
}

// RoleStore creates built-in roles and grants them permissions
type RoleStore interface {
	GetByName(ctx context.Context, name string) (*appModels.Role, error)
	Create(ctx context.Context, role *appModels.Role, permissionIDs []int64) error
	Grant(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// UserStore creates the first administrator
type UserStore interface {
	GetByLogin(ctx context.Context, login string) (*appModels.User, error)
	Create(ctx context.Context, u *appModels.User) error
}

// DepartmentStore creates the starter departments
type DepartmentStore interface {
	Create(ctx context.Context, d *appModels.Department) error
}

var roleDescriptions = map[string]string{
	"teacher": "Teaching staff",
	"staff":   "Administrative and support staff",
}

// DefaultDepartments are created on a fresh database
var DefaultDepartments = []appModels.Department{
	{Name: "Science", Code: "SCI", Description: "General and elective science"},
	{Name: "Mathematics", Code: "MATH", Description: "Core and elective mathematics"},
	{Name: "Languages", Code: "LANG", Description: "English, French and Ghanaian languages"},
	{Name: "Business", Code: "BUS", Description: "Accounting, business management and economics"},
	{Name: "Visual Arts", Code: "VART", Description: "Graphic design, picture making and textiles"},
	{Name: "Home Economics", Code: "HOME", Description: "Food and nutrition, clothing and management in living"},
}

// Seeder creates the default rows; every step can run again safely
type Seeder struct {
	permissions   PermissionStore
	roles         RoleStore
	users         UserStore
	departments   DepartmentStore
	superuserRole string
	logger        zerolog.Logger
}

// NewSeeder creates a Seeder
func NewSeeder(permissions PermissionStore, roles RoleStore, users UserStore, departments DepartmentStore, superuserRole string, lgr zerolog.Logger) *Seeder {
	return &Seeder{
		permissions:   permissions,
		roles:         roles,
		users:         users,
		departments:   departments,
		superuserRole: superuserRole,
		logger:        lgr,
	}
}

// FromRepositories builds a Seeder over the application repositories
func FromRepositories(repos *appRepos.Repositories, superuserRole string, lgr zerolog.Logger) *Seeder {
	return NewSeeder(repos.PermissionRepository, repos.RoleRepository, repos.UserRepository, repos.DepartmentRepository, superuserRole, lgr)
}

// Permissions upserts the permission catalog and returns name => id
func (s *Seeder) Permissions(ctx context.Context) (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, def := range appAuth.Catalog() {
		id, err := s.permissions.Upsert(ctx, def.Name, def.Description)
		if err != nil {
			return nil, err
		}
		ids[def.Name] = id
	}
	s.logger.Info().Int("count", len(ids)).Msg("Permission catalog seeded")
	return ids, nil
}

// ensureRole returns the named role, creating it when missing
func (s *Seeder) ensureRole(ctx context.Context, name, description string) (*appModels.Role, error) {
	role, err := s.roles.GetByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	role = &appModels.Role{Name: name, Description: description}
	if err := s.roles.Create(ctx, role, nil); err != nil {
		return nil, fmt.Errorf("failed to create role %s: %w", name, err)
	}
	s.logger.Info().Str("role", name).Msg("Role created")
	return role, nil
}

// Roles creates the superuser role and the built-in roles, granting their default permissions.
// Grants are only ever added, so permissions an administrator revoked come back on the next run.
func (s *Seeder) Roles(ctx context.Context, permissionIDs map[string]int64) error {
	if _, err := s.ensureRole(ctx, s.superuserRole, "Full access to every module"); err != nil {
		return err
	}

	var errs error
	for name, grants := range appAuth.DefaultGrants {
		if name == s.superuserRole {
			continue
		}
		role, err := s.ensureRole(ctx, name, roleDescriptions[name])
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}

		ids := make([]int64, 0, len(grants))
		for _, perm := range grants {
			if id, ok := permissionIDs[perm]; ok {
				ids = append(ids, id)
			}
		}
		if err := s.roles.Grant(ctx, role.ID, ids); err != nil {
			errs = errors.Join(errs, fmt.Errorf("role %s: %w", name, err))
		}
	}
	return errs
}

// Admin creates the first superuser account unless one with that email exists.
// An empty password skips the step.
func (s *Seeder) Admin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.logger.Warn().Msg("No administrator password configured; skipping admin account")
		return nil
	}

	if _, err := s.users.GetByLogin(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return err
	}

	if !auth.PasswordMeetsPolicy(password) {
		return apperrors.NewValidationError("adminPassword", auth.PasswordPolicyMessage)
	}
	role, err := s.roles.GetByName(ctx, s.superuserRole)
	if err != nil {
		return fmt.Errorf("superuser role missing: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	username, _, _ := strings.Cut(email, "@")
	u := &appModels.User{
		Email:     email,
		Username:  username,
		Password:  hash,
		FirstName: "System",
		LastName:  "Administrator",
		RoleID:    role.ID,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("Administrator account created")
	return nil
}

// Departments creates the starter departments, skipping ones that already exist
func (s *Seeder) Departments(ctx context.Context) error {
	var errs error
	for _, d := range DefaultDepartments {
		dept := d
		err := s.departments.Create(ctx, &dept)
		switch {
		case err == nil:
			s.logger.Info().Str("code", dept.Code).Msg("Department created")
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		default:
			s.logger.Error().Err(err).Str("code", dept.Code).Msg("Error creating department")
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Run performs every seeding step, continuing past failures and returning them joined
func (s *Seeder) Run(ctx context.Context, adminEmail, adminPassword string) error {
	s.logger.Info().Msg("Checking/Creating default data...")

	ids, err := s.Permissions(ctx)
	if err != nil {
		return err
	}

	var finalErr error
	if err := s.Roles(ctx, ids); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	if err := s.Admin(ctx, adminEmail, adminPassword); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	if err := s.Departments(ctx); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	return finalErr
}

// CreateDefaultData seeds permissions, roles, the administrator and departments
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, cfg *config.Config, lgr zerolog.Logger) error {
	return FromRepositories(repos, cfg.Auth.SuperuserRole, lgr).Run(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
}
