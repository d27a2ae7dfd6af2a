package repositories

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
)

func TestTokenCleanup_UsesRevocationTime(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTokenRepository(mock)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE \(expiry_date < \$1 OR \(is_revoked = \$2 AND revoked_at < \$3\)\)`).
		WithArgs(pgxmock.AnyArg(), true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	removed, err := repo.CleanupExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeToken_StampsRevocation(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTokenRepository(mock)

	mock.ExpectExec(`UPDATE refresh_tokens SET is_revoked = \$1, revoked_at = NOW\(\) WHERE token = \$2`).
		WithArgs(true, "abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET is_revoked = \$1, revoked_at = NOW\(\) WHERE token = \$2`).
		WithArgs(true, "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.RevokeToken(context.Background(), "abc"))
	assert.ErrorIs(t, repo.RevokeToken(context.Background(), "gone"), apperrors.ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
