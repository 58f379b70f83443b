package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

func TestRefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBunRefreshTokenRepository(db)
	user := seedUser(t, db, "alice@example.com")

	record := &models.RefreshToken{
		TokenHash: "hash-1",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, record))

	got, err := repo.GetByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.False(t, got.Revoked)
	assert.True(t, got.Usable(time.Now()))

	_, err = repo.GetByHash(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Revoke(ctx, "hash-1", user.ID))
	got, err = repo.GetByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)
	assert.False(t, got.Usable(time.Now()))

	// Revoking again, or revoking an unknown hash, is quiet.
	require.NoError(t, repo.Revoke(ctx, "hash-1", user.ID))
	require.NoError(t, repo.Revoke(ctx, "missing", user.ID))
}

func TestRefreshTokenRevokeScopedToUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBunRefreshTokenRepository(db)
	alice := seedUser(t, db, "alice@example.com")
	mallory := seedUser(t, db, "mallory@example.com")

	require.NoError(t, repo.Create(ctx, &models.RefreshToken{
		TokenHash: "alice-hash",
		UserID:    alice.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	// Another user cannot revoke someone else's session.
	require.NoError(t, repo.Revoke(ctx, "alice-hash", mallory.ID))
	got, err := repo.GetByHash(ctx, "alice-hash")
	require.NoError(t, err)
	assert.False(t, got.Revoked)
}
