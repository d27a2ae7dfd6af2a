package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/db"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/dberrors"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// TokenRepository handles refresh token persistence
type TokenRepository struct {
	db db.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(pool db.Pool) *TokenRepository {
	return &TokenRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a new refresh token
func (r *TokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expiry_date", "is_revoked").
		Values(token, userID, expiryDate, false).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_token_key") {
			logger.Warn().Int64("userID", userID).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// GetToken loads a refresh token; revoked or expired tokens are reported as errors
func (r *TokenRepository) GetToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	q := r.sb.Select("token", "user_id", "expiry_date", "is_revoked", "revoked_at", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1)

	rt, err := queryOne[models.RefreshToken](ctx, r.db, q, apperrors.ErrTokenNotFound)
	if err != nil {
		return nil, err
	}
	if rt.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if rt.ExpiryDate.Before(time.Now()) {
		return nil, apperrors.ErrTokenExpired
	}
	return rt, nil
}

// Rotate revokes oldToken and stores newToken in one transaction.
// It fails with ErrTokenRevoked if oldToken was already used.
func (r *TokenRepository) Rotate(ctx context.Context, oldToken, newToken string, userID int64, expiryDate time.Time) error {
	revoke, revokeArgs, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Set("revoked_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"token": oldToken, "is_revoked": false}).
		ToSql()
	if err != nil {
		return err
	}
	insert, insertArgs, err := r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expiry_date", "is_revoked").
		Values(newToken, userID, expiryDate, false).
		ToSql()
	if err != nil {
		return err
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, revoke, revokeArgs...)
		if err != nil {
			return fmt.Errorf("error revoking token: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrTokenRevoked
		}
		if _, err := tx.Exec(ctx, insert, insertArgs...); err != nil {
			return fmt.Errorf("error creating token: %w", err)
		}
		return nil
	})
}

// RevokeToken revokes a token
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	sql, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Set("revoked_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}

// RevokeAllUserTokens revokes all tokens for a specific user
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Set("revoked_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke all user tokens query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error revoking user tokens: %w", err)
	}
	return nil
}

// RevokedRetention is how long a revoked token is kept for reuse detection
const RevokedRetention = 30 * 24 * time.Hour

// CleanupExpiredTokens removes expired tokens and tokens revoked more than RevokedRetention ago
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now()

	sql, args, err := r.sb.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expiry_date": now},
			squirrel.And{
				squirrel.Eq{"is_revoked": true},
				squirrel.Lt{"revoked_at": now.Add(-RevokedRetention)},
			},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}

	logger.Info().Int64("deletedCount", cmdTag.RowsAffected()).Msg("Cleaned up expired/old revoked tokens")
	return cmdTag.RowsAffected(), nil
}

