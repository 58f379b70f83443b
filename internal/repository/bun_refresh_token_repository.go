package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

// BunRefreshTokenRepository implements RefreshTokenRepository using Bun ORM.
type BunRefreshTokenRepository struct {
	db *bun.DB
}

// NewBunRefreshTokenRepository creates a new Bun-based refresh token repository.
func NewBunRefreshTokenRepository(db *bun.DB) *BunRefreshTokenRepository {
	return &BunRefreshTokenRepository{db: db}
}

// Create inserts a new refresh token record.
func (r *BunRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	token.CreatedAt = time.Now()

	_, err := r.db.NewInsert().Model(token).Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("refresh token record: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetByHash retrieves a refresh token record by its unique token hash.
func (r *BunRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	return readWithRetry(ctx, func() (*models.RefreshToken, error) {
		token := new(models.RefreshToken)
		err := r.db.NewSelect().Model(token).Where("token_hash = ?", tokenHash).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("refresh token record: %w", ErrNotFound)
			}
			return nil, fmt.Errorf("query refresh token: %w", err)
		}
		return token, nil
	})
}

// Revoke marks the record matching (hash, userID) as revoked. The update is a
// single atomic statement; affecting zero rows (unknown token, wrong user, or
// already revoked) is not an error.
func (r *BunRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, userID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.RefreshToken)(nil)).
		Set("revoked = ?", true).
		Where("token_hash = ?", tokenHash).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
