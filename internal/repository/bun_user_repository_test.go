package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

func TestUserCreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBunUserRepository(db)

	user := &models.User{
		Email:          "alice@example.com",
		HashedPassword: "hashed",
		FullName:       "Alice",
		IsActive:       true,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBunUserRepository(db)

	require.NoError(t, repo.Create(ctx, &models.User{Email: "alice@example.com", HashedPassword: "x"}))
	err := repo.Create(ctx, &models.User{Email: "alice@example.com", HashedPassword: "y"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUserSetActive(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBunUserRepository(db)

	user := seedUser(t, db, "alice@example.com")
	require.NoError(t, repo.SetActive(ctx, user.ID, false))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, repo.SetActive(ctx, 999, false), ErrNotFound)
}
