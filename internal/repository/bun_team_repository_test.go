package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

func TestCreateWithOwnerWritesMembershipAtomically(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	teams := NewBunTeamRepository(db)
	memberships := NewBunMembershipRepository(db)
	owner := seedUser(t, db, "owner@example.com")

	team := &models.Team{Name: "Platform", OwnerID: owner.ID}
	require.NoError(t, teams.CreateWithOwner(ctx, team))
	require.NotZero(t, team.ID)

	membership, err := memberships.Get(ctx, team.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleOwner, membership.Role)

	got, err := teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", got.Name)
}

func TestListForUserOnlyReturnsMemberTeams(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	teams := NewBunTeamRepository(db)
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	require.NoError(t, teams.CreateWithOwner(ctx, &models.Team{Name: "Alice Team", OwnerID: alice.ID}))
	require.NoError(t, teams.CreateWithOwner(ctx, &models.Team{Name: "Bob Team", OwnerID: bob.ID}))

	aliceTeams, err := teams.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceTeams, 1)
	assert.Equal(t, "Alice Team", aliceTeams[0].Name)
}

func TestMembershipAddDuplicatePreservesRole(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	memberships := NewBunMembershipRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	member := seedUser(t, db, "member@example.com")
	team, _ := seedTeamWithProject(t, db, owner)

	require.NoError(t, memberships.Add(ctx, &models.TeamMember{
		TeamID: team.ID,
		UserID: member.ID,
		Role:   models.TeamRoleViewer,
	}))

	// A second add, even with a different role, fails and changes nothing.
	err := memberships.Add(ctx, &models.TeamMember{
		TeamID: team.ID,
		UserID: member.ID,
		Role:   models.TeamRoleAdmin,
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	membership, err := memberships.Get(ctx, team.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleViewer, membership.Role)
}

func TestMembershipListByTeamIncludesUserFields(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	memberships := NewBunMembershipRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	team, _ := seedTeamWithProject(t, db, owner)

	records, err := memberships.ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, owner.ID, records[0].UserID)
	assert.Equal(t, "owner@example.com", records[0].Email)
	assert.Equal(t, models.TeamRoleOwner, records[0].Role)
}
