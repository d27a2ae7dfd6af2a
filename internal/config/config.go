package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT,duration"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT,duration"`
		SecureCookie bool   `yaml:"secure_cookie" env:"SERVER_SECURE_COOKIE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME,duration"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION,duration"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION,duration"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Auth struct {
		SuperuserRole      string `yaml:"superuser_role" env:"AUTH_SUPERUSER_ROLE"`
		PermissionCacheTTL string `yaml:"permission_cache_ttl" env:"AUTH_PERMISSION_CACHE_TTL,duration"`
		AdminEmail         string `yaml:"admin_email" env:"AUTH_ADMIN_EMAIL"`
		AdminPassword      string `yaml:"admin_password" env:"AUTH_ADMIN_PASSWORD"`
	} `yaml:"auth"`

	School struct {
		Name        string `yaml:"name" env:"SCHOOL_NAME"`
		IndexPrefix string `yaml:"index_prefix" env:"SCHOOL_INDEX_PREFIX"`
		IndexDigits int    `yaml:"index_digits" env:"SCHOOL_INDEX_DIGITS"`
		ExportLimit int    `yaml:"export_limit" env:"SCHOOL_EXPORT_LIMIT"`
	} `yaml:"school"`
}

var indexPrefixPattern = regexp.MustCompile(`^[A-Z0-9]{0,8}$`)

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; defaults and environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "30s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "npresec"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "npresec.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Auth.SuperuserRole = "admin"
	config.Auth.PermissionCacheTTL = "5m"
	config.Auth.AdminEmail = "admin@npresec.edu.gh"

	config.School.Name = "Navrongo Presbyterian Senior High School"
	config.School.IndexPrefix = "NPR"
	config.School.IndexDigits = 4
	config.School.ExportLimit = 10000
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database conn max lifetime":   config.Database.ConnMaxLifetime,
		"permission cache ttl":         config.Auth.PermissionCacheTTL,
		"server read timeout":          config.Server.ReadTimeout,
		"server write timeout":         config.Server.WriteTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Auth.SuperuserRole == "" {
		return fmt.Errorf("superuser role is required")
	}

	if !indexPrefixPattern.MatchString(config.School.IndexPrefix) {
		return fmt.Errorf("school index prefix must be up to 8 uppercase letters or digits")
	}
	if config.School.IndexDigits < 3 || config.School.IndexDigits > 8 {
		return fmt.Errorf("school index digits must be between 3 and 8")
	}
	if config.School.ExportLimit <= 0 {
		return fmt.Errorf("school export limit must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     c.Database.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}

// Duration parses a validated duration field, returning fallback when empty
func Duration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}
