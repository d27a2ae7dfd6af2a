package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Azechum30/npresec-app/internal/app/migrations"
	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/app/repositories"
	"github.com/Azechum30/npresec-app/internal/bootstrap"
	"github.com/Azechum30/npresec-app/internal/config"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/validation"
	"github.com/Azechum30/npresec-app/internal/seed"
)

// Admin is what the admin commands do against a database
type Admin interface {
	Pending(ctx context.Context) ([]string, error)
	Migrate(ctx context.Context) (int, error)
	Seed(ctx context.Context) error
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, roleName string) (*models.User, error)
	ResetPassword(ctx context.Context, login, password string) error
	CleanupTokens(ctx context.Context) (int64, error)
	Close()
}

// Opener connects an Admin using the configuration at configPath
type Opener func(configPath string) (Admin, error)

type dbAdmin struct {
	cfg    *config.Config
	pool   *pgxpool.Pool
	repos  *repositories.Repositories
	svc    bootstrap.Services
	logger zerolog.Logger
}

// OpenDatabase loads the configuration and connects to its database
func OpenDatabase(configPath string) (Admin, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, err
	}
	pool, err := bootstrap.ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	repos := bootstrap.NewRepositories(cfg, pool)
	svc, _, _ := bootstrap.BuildServices(cfg, repos, lgr)
	return &dbAdmin{cfg: cfg, pool: pool, repos: repos, svc: svc, logger: lgr}, nil
}

func (a *dbAdmin) migrator() *migrations.Migrator {
	return migrations.NewMigrator(a.pool, migrations.Embedded(), a.logger)
}

func (a *dbAdmin) Pending(ctx context.Context) ([]string, error) {
	return a.migrator().Pending(ctx)
}

func (a *dbAdmin) Migrate(ctx context.Context) (int, error) {
	return a.migrator().Up(ctx)
}

func (a *dbAdmin) Seed(ctx context.Context) error {
	return seed.CreateDefaultData(ctx, a.repos, a.cfg, a.logger)
}

// CreateUser resolves the role by name and creates the account through the user service
func (a *dbAdmin) CreateUser(ctx context.Context, req *dto.CreateUserRequest, roleName string) (*models.User, error) {
	role, err := a.repos.RoleRepository.GetByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("role %q: %w", roleName, err)
	}
	req.RoleID = role.ID

	if err := validation.Struct(req); err != nil {
		return nil, validationFailure(err)
	}
	return a.svc.Users.Create(ctx, req)
}

func (a *dbAdmin) ResetPassword(ctx context.Context, login, password string) error {
	u, err := a.repos.UserRepository.GetByLogin(ctx, login)
	if err != nil {
		return fmt.Errorf("user %q: %w", login, err)
	}
	req := &dto.ResetPasswordRequest{NewPassword: password}
	if err := validation.Struct(req); err != nil {
		return validationFailure(err)
	}
	return a.svc.Users.ResetPassword(ctx, u.ID, req)
}

func (a *dbAdmin) CleanupTokens(ctx context.Context) (int64, error) {
	return a.repos.TokenRepository.CleanupExpiredTokens(ctx)
}

func (a *dbAdmin) Close() {
	a.pool.Close()
}

// validationFailure flattens validator errors into one line per field
func validationFailure(err error) error {
	fields, ok := validation.TranslateErrors(err)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for _, msg := range fields {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, strings.Join(msgs, "; "))
}
