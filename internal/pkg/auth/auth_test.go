package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "npresec.test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()

	pair, err := svc.GenerateTokenPair(Subject{UserID: 7, Email: "a@b.c", RoleID: 2, RoleName: "teacher"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)
	assert.Equal(t, 86400, pair.RefreshExpiresIn)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, int64(2), claims.RoleID)
	assert.Equal(t, "teacher", claims.RoleName)
	assert.Equal(t, "7", claims.Subject)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	pair, err := svc.GenerateTokenPair(Subject{UserID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	pair, err := newTestService().GenerateTokenPair(Subject{UserID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "npresec.test"})
	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer", "Bearer abc", "abc", false},
		{"raw", "abc", "abc", false},
		{"empty", "", "", true},
		{"bearer only", "Bearer  ", "", true},
		{"bare scheme", "Bearer", "", true},
		{"lowercase scheme", "bearer abc", "abc", false},
		{"padded token", "  Bearer   abc ", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
}

func TestPasswordMeetsPolicy(t *testing.T) {
	assert.True(t, PasswordMeetsPolicy("abcdefg1"))
	assert.False(t, PasswordMeetsPolicy("abc1"))
	assert.False(t, PasswordMeetsPolicy("abcdefgh"))
	assert.False(t, PasswordMeetsPolicy("12345678"))
}

func TestPlaceholderHash(t *testing.T) {
	hash := PlaceholderHash()
	assert.Equal(t, hash, PlaceholderHash())

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
	assert.False(t, CheckPassword(hash, "Passw0rd1"))
}
