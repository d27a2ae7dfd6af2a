package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/Azechum30/npresec-app/internal/app/auth"
	appControllers "github.com/Azechum30/npresec-app/internal/app/controllers"
	appMigrations "github.com/Azechum30/npresec-app/internal/app/migrations"
	appRepos "github.com/Azechum30/npresec-app/internal/app/repositories"
	appRoutes "github.com/Azechum30/npresec-app/internal/app/routes"
	appServices "github.com/Azechum30/npresec-app/internal/app/services"
	"github.com/Azechum30/npresec-app/internal/config"
	"github.com/Azechum30/npresec-app/internal/db"
	appMiddleware "github.com/Azechum30/npresec-app/internal/middleware"
	pkgAuth "github.com/Azechum30/npresec-app/internal/pkg/auth"
	"github.com/Azechum30/npresec-app/internal/pkg/indexnumber"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
	"github.com/Azechum30/npresec-app/internal/pkg/validation"
	"github.com/Azechum30/npresec-app/internal/seed"
)

// DefaultConfigPath is where the server and the admin CLI look for configuration
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Services holds the application services
type Services struct {
	Auth        *appServices.AuthService
	Users       *appServices.UserService
	Roles       *appServices.RoleService
	Permissions *appServices.PermissionService
	Departments *appServices.DepartmentService
	Classes     *appServices.ClassService
	Courses     *appServices.CourseService
	Students    *appServices.StudentService
	Teachers    *appServices.TeacherService
	Staff       *appServices.StaffService
	Dashboard   *appServices.DashboardService
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       Services
	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "npresec",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool and checks it answers
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Establishing database connection...")
	pool, err := db.NewPostgresPool(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		pool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return pool, nil
}

// Migrate applies pending embedded migrations
func Migrate(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(pool, appMigrations.Embedded(), lgr).Up(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects, and with auto_migrate on also migrates and seeds the defaults.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}
	if !cfg.Database.AutoMigrate {
		lgr.Info().Msg("Auto migration disabled; run the admin CLI to migrate")
		return pool, nil
	}

	ctx := context.Background()
	if err := Migrate(ctx, pool, lgr); err != nil {
		pool.Close()
		return nil, err
	}

	// Seeding problems are logged but never stop the server
	if err := seed.CreateDefaultData(ctx, NewRepositories(cfg, pool), cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
	return pool, nil
}

// NewRepositories builds the repositories with the configured index number generator
func NewRepositories(cfg *config.Config, pool db.Pool) *appRepos.Repositories {
	return appRepos.NewRepositories(pool, indexnumber.New(cfg.School.IndexPrefix, cfg.School.IndexDigits))
}

// BuildServices wires the repositories into the application services
func BuildServices(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (Services, *appAuth.AuthorizationService, *pkgAuth.JWTService) {
	limit := cfg.School.ExportLimit
	superuser := cfg.Auth.SuperuserRole

	authz := appAuth.NewAuthorizationService(
		repos.RoleRepository,
		superuser,
		config.Duration(cfg.Auth.PermissionCacheTTL, 5*time.Minute),
	)

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  config.Duration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: config.Duration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	svc := Services{
		Auth:        appServices.NewAuthService(repos.UserRepository, repos.TokenRepository, authz, jwtService, lgr),
		Users:       appServices.NewUserService(repos.UserRepository, repos.TokenRepository, repos.RoleRepository, superuser, limit),
		Roles:       appServices.NewRoleService(repos.RoleRepository, repos.PermissionRepository, authz, superuser, limit),
		Permissions: appServices.NewPermissionService(repos.PermissionRepository, limit),
		Departments: appServices.NewDepartmentService(repos.DepartmentRepository, repos.TeacherRepository, limit),
		Classes:     appServices.NewClassService(repos.ClassRepository, repos.DepartmentRepository, repos.TeacherRepository, limit),
		Courses: appServices.NewCourseService(repos.CourseRepository, repos.DepartmentRepository,
			repos.TeacherRepository, repos.ClassRepository, limit),
		Students: appServices.NewStudentService(repos.StudentRepository, repos.ClassRepository,
			repos.DepartmentRepository, repos.UserRepository, limit),
		Teachers:  appServices.NewTeacherService(repos.TeacherRepository, repos.DepartmentRepository, repos.UserRepository, limit),
		Staff:     appServices.NewStaffService(repos.StaffRepository, repos.DepartmentRepository, repos.UserRepository, limit),
		Dashboard: appServices.NewDashboardService(repos.DashboardRepository),
	}
	return svc, authz, jwtService
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = NewRepositories(cfg, dbPool)
	deps.Services, deps.AuthzService, deps.JWTService = BuildServices(cfg, deps.Repos, lgr)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	s := deps.Services
	deps.Controllers = &appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(s.Auth, cfg.Server.SecureCookie, lgr),
		User:       appControllers.NewUserController(s.Users),
		Role:       appControllers.NewRoleController(s.Roles, s.Permissions),
		Department: appControllers.NewDepartmentController(s.Departments),
		Class:      appControllers.NewClassController(s.Classes),
		Course:     appControllers.NewCourseController(s.Courses),
		Student:    appControllers.NewStudentController(s.Students),
		Teacher:    appControllers.NewTeacherController(s.Teachers),
		Staff:      appControllers.NewStaffController(s.Staff),
		Dashboard:  appControllers.NewDashboardController(s.Dashboard),
		Page: appControllers.NewPageController(appControllers.PageServices{
			Auth:        s.Auth,
			Dashboard:   s.Dashboard,
			Departments: s.Departments,
			Classes:     s.Classes,
			Courses:     s.Courses,
			Students:    s.Students,
			Teachers:    s.Teachers,
			Staff:       s.Staff,
			Users:       s.Users,
			Roles:       s.Roles,
			Permissions: s.Permissions,
		}, deps.AuthzService, cfg.School.Name, cfg.Server.SecureCookie),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}
	validation.InstallGinValidator()

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(logger.WithComponent("http")), appMiddleware.Recovery(lgr))

	tmpl, err := appControllers.PageTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin page templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
