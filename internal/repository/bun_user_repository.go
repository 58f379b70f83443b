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

// BunUserRepository implements UserRepository using Bun ORM.
type BunUserRepository struct {
	db *bun.DB
}

// NewBunUserRepository creates a new Bun-based user repository.
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// Create inserts a new user. A duplicate email yields ErrAlreadyExists.
func (r *BunUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("user with email '%s': %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail fetches a user by their unique email address.
func (r *BunUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return readWithRetry(ctx, func() (*models.User, error) {
		user := new(models.User)
		err := r.db.NewSelect().Model(user).Where("email = ?", email).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("user with email '%s': %w", email, ErrNotFound)
			}
			return nil, fmt.Errorf("query user: %w", err)
		}
		return user, nil
	})
}

// GetByID fetches a user by primary key.
func (r *BunUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return readWithRetry(ctx, func() (*models.User, error) {
		user := new(models.User)
		err := r.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
			}
			return nil, fmt.Errorf("query user: %w", err)
		}
		return user, nil
	})
}

// SetActive flips the account's active flag.
func (r *BunUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user active flag: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
