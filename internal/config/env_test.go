package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestOverrideFromEnv(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	err := overrideFromEnv(reflect.ValueOf(cfg).Elem(), mapLookup(map[string]string{
		"SERVER_READ_TIMEOUT": " 15s ",
		"DB_MAX_OPEN_CONNS":   "40",
		"DB_AUTO_MIGRATE":     "false",
		"SCHOOL_NAME":         "NPRESEC",
	}))
	require.NoError(t, err)
	assert.Equal(t, "15s", cfg.Server.ReadTimeout)
	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "NPRESEC", cfg.School.Name)
	assert.Equal(t, "1h", cfg.JWT.AccessTokenExpiration)
}

func TestOverrideFromEnv_ReportsEveryBadVariable(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	err := overrideFromEnv(reflect.ValueOf(cfg).Elem(), mapLookup(map[string]string{
		"JWT_ACCESS_TOKEN_EXPIRATION": "soon",
		"DB_MAX_OPEN_CONNS":           "many",
		"SERVER_SECURE_COOKIE":        "sometimes",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_TOKEN_EXPIRATION")
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
	assert.Contains(t, err.Error(), "SERVER_SECURE_COOKIE")
	assert.Equal(t, "1h", cfg.JWT.AccessTokenExpiration)
}

func TestParseEnvTag(t *testing.T) {
	assert.Equal(t, envTag{name: "JWT_SECRET"}, parseEnvTag("JWT_SECRET"))
	assert.Equal(t, envTag{name: "SERVER_READ_TIMEOUT", duration: true}, parseEnvTag("SERVER_READ_TIMEOUT,duration"))
	assert.Equal(t, envTag{}, parseEnvTag(""))
}
