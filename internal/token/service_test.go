package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupamo/realtime-collab/internal/config"
	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
)

type memRefreshTokenRepo struct {
	byHash map[string]*models.RefreshToken
}

func newMemRefreshTokenRepo() *memRefreshTokenRepo {
	return &memRefreshTokenRepo{byHash: make(map[string]*models.RefreshToken)}
}

func (m *memRefreshTokenRepo) Create(_ context.Context, rt *models.RefreshToken) error {
	if _, ok := m.byHash[rt.TokenHash]; ok {
		return repository.ErrAlreadyExists
	}
	clone := *rt
	m.byHash[rt.TokenHash] = &clone
	return nil
}

func (m *memRefreshTokenRepo) GetByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	rt, ok := m.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *rt
	return &clone, nil
}

func (m *memRefreshTokenRepo) Revoke(_ context.Context, hash string, userID int64) error {
	if rt, ok := m.byHash[hash]; ok && rt.UserID == userID {
		rt.Revoked = true
	}
	return nil
}

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestIssueAndValidateAccessToken(t *testing.T) {
	svc := NewService(testConfig(), newMemRefreshTokenRepo())

	raw, expiresAt, err := svc.IssueAccessToken(7, "alice@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewService(testConfig(), newMemRefreshTokenRepo())
	svc.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })

	raw, _, err := svc.IssueAccessToken(7, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsGarbageAndWrongSecret(t *testing.T) {
	svc := NewService(testConfig(), newMemRefreshTokenRepo())

	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewService(config.JWTConfig{
		Secret:          "different-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}, newMemRefreshTokenRepo())
	raw, _, err := other.IssueAccessToken(7, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemRefreshTokenRepo()
	svc := NewService(testConfig(), repo)

	raw, expiresAt, err := svc.IssueRefreshToken(7, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, raw, 7, expiresAt))

	// Only the hash is persisted.
	_, stored := repo.byHash[raw]
	assert.False(t, stored)
	_, stored = repo.byHash[HashToken(raw)]
	assert.True(t, stored)

	live, err := svc.IsLive(ctx, raw, 7)
	require.NoError(t, err)
	assert.True(t, live)

	// Wrong user does not see the session as live.
	live, err = svc.IsLive(ctx, raw, 8)
	require.NoError(t, err)
	assert.False(t, live)

	require.NoError(t, svc.Revoke(ctx, raw, 7))
	live, err = svc.IsLive(ctx, raw, 7)
	require.NoError(t, err)
	assert.False(t, live)

	// Revocation is idempotent.
	require.NoError(t, svc.Revoke(ctx, raw, 7))
}

func TestIsLiveUnknownToken(t *testing.T) {
	svc := NewService(testConfig(), newMemRefreshTokenRepo())

	live, err := svc.IsLive(context.Background(), "never-recorded", 7)
	require.NoError(t, err)
	assert.False(t, live)
}

func TestIsLiveExpiredRecord(t *testing.T) {
	ctx := context.Background()
	repo := newMemRefreshTokenRepo()
	svc := NewService(testConfig(), repo)

	raw, _, err := svc.IssueRefreshToken(7, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Record(ctx, raw, 7, time.Now().Add(-time.Minute)))

	live, err := svc.IsLive(ctx, raw, 7)
	require.NoError(t, err)
	assert.False(t, live)
}
