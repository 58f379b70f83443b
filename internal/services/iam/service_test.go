package iam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupamo/realtime-collab/internal/config"
	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/token"
)

type memUserRepo struct {
	nextID  int64
	byID    map[int64]*models.User
	byEmail map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		nextID:  1,
		byID:    make(map[int64]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (m *memUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrAlreadyExists
	}
	user.ID = m.nextID
	m.nextID++
	clone := *user
	m.byID[user.ID] = &clone
	m.byEmail[user.Email] = &clone
	return nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memUserRepo) SetActive(_ context.Context, id int64, active bool) error {
	user, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = active
	return nil
}

type memRefreshRepo struct {
	byHash map[string]*models.RefreshToken
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{byHash: make(map[string]*models.RefreshToken)}
}

func (m *memRefreshRepo) Create(_ context.Context, rt *models.RefreshToken) error {
	clone := *rt
	m.byHash[rt.TokenHash] = &clone
	return nil
}

func (m *memRefreshRepo) GetByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	rt, ok := m.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *rt
	return &clone, nil
}

func (m *memRefreshRepo) Revoke(_ context.Context, hash string, userID int64) error {
	if rt, ok := m.byHash[hash]; ok && rt.UserID == userID {
		rt.Revoked = true
	}
	return nil
}

type memMembershipRepo struct {
	members map[[2]int64]*models.TeamMember
}

func newMemMembershipRepo() *memMembershipRepo {
	return &memMembershipRepo{members: make(map[[2]int64]*models.TeamMember)}
}

func (m *memMembershipRepo) Get(_ context.Context, teamID, userID int64) (*models.TeamMember, error) {
	member, ok := m.members[[2]int64{teamID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *member
	return &clone, nil
}

func (m *memMembershipRepo) Add(_ context.Context, member *models.TeamMember) error {
	key := [2]int64{member.TeamID, member.UserID}
	if _, ok := m.members[key]; ok {
		return repository.ErrAlreadyExists
	}
	clone := *member
	m.members[key] = &clone
	return nil
}

func (m *memMembershipRepo) ListByTeam(_ context.Context, teamID int64) ([]repository.TeamMemberRecord, error) {
	var records []repository.TeamMemberRecord
	for _, member := range m.members {
		if member.TeamID == teamID {
			records = append(records, repository.TeamMemberRecord{
				TeamID: member.TeamID,
				UserID: member.UserID,
				Role:   member.Role,
			})
		}
	}
	return records, nil
}

func newTestStack(t *testing.T) (*Service, *Gate, *memUserRepo, *memMembershipRepo) {
	t.Helper()
	users := newMemUserRepo()
	memberships := newMemMembershipRepo()
	tokens := token.NewService(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}, newMemRefreshRepo())
	return NewService(users, tokens, 4), NewGate(tokens, users, memberships), users, memberships
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, gate, _, _ := newTestStack(t)

	user, err := svc.Register(ctx, "alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.HashedPassword)

	_, err = svc.Register(ctx, "alice@example.com", "another", "Alice Again")
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)

	loggedIn, session, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)

	authed, err := gate.Authenticate(ctx, "Bearer "+session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _, users, _ := newTestStack(t)

	user, err := svc.Register(ctx, "alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, users.SetActive(ctx, user.ID, false))
	_, _, err = svc.Login(ctx, "alice@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthenticateRejections(t *testing.T) {
	ctx := context.Background()
	svc, gate, users, _ := newTestStack(t)

	user, err := svc.Register(ctx, "alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)
	_, session, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = gate.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = gate.Authenticate(ctx, session.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "scheme-less header must be rejected")

	_, err = gate.Authenticate(ctx, "Bearer "+session.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "refresh tokens cannot authenticate requests")

	require.NoError(t, users.SetActive(ctx, user.ID, false))
	_, err = gate.Authenticate(ctx, "Bearer "+session.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "deactivation must take effect immediately")
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, gate, _, _ := newTestStack(t)

	user, err := svc.Register(ctx, "alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)
	_, session, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	authed, err := gate.Authenticate(ctx, "Bearer "+access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	// An access token cannot be used as a refresh token.
	_, err = svc.Refresh(ctx, session.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.Logout(ctx, user, session.RefreshToken))
	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "a revoked refresh token must stop working immediately")

	// Logout is idempotent.
	require.NoError(t, svc.Logout(ctx, user, session.RefreshToken))

	// Existing access tokens keep working until they expire.
	_, err = gate.Authenticate(ctx, "Bearer "+session.AccessToken)
	assert.NoError(t, err)
}

func TestAuthorizeTeamAccess(t *testing.T) {
	ctx := context.Background()
	_, gate, _, memberships := newTestStack(t)

	user := &models.User{ID: 7, IsActive: true}
	require.NoError(t, memberships.Add(ctx, &models.TeamMember{TeamID: 1, UserID: 7, Role: models.TeamRoleMember}))

	membership, err := gate.AuthorizeTeamAccess(ctx, user, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleMember, membership.Role)

	_, err = gate.AuthorizeTeamAccess(ctx, user, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = gate.AuthorizeTeamAccess(ctx, user, 1, models.TeamRoleOwner, models.TeamRoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden, "member role must not pass a managing-role check")

	require.NoError(t, memberships.Add(ctx, &models.TeamMember{TeamID: 3, UserID: 7, Role: models.TeamRoleAdmin}))
	_, err = gate.AuthorizeTeamAccess(ctx, user, 3, models.TeamRoleOwner, models.TeamRoleAdmin)
	assert.NoError(t, err)
}
