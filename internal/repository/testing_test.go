package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/lupamo/realtime-collab/internal/db/bunx"
	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/migrations"
)

// newTestDB opens an in-memory database with the real schema so repository
// tests exercise the same constraints production sees.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })
	require.NoError(t, migrations.CreateSchema(context.Background(), db))
	return db
}

// seedUser inserts a user and returns it.
func seedUser(t *testing.T, db *bun.DB, email string) *models.User {
	t.Helper()
	repo := NewBunUserRepository(db)
	user := &models.User{
		Email:          email,
		HashedPassword: "x",
		IsActive:       true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// seedTeamWithProject builds a team owned by the user with one project in it.
func seedTeamWithProject(t *testing.T, db *bun.DB, owner *models.User) (*models.Team, *models.Project) {
	t.Helper()
	ctx := context.Background()

	team := &models.Team{Name: "Team", OwnerID: owner.ID}
	require.NoError(t, NewBunTeamRepository(db).CreateWithOwner(ctx, team))

	project := &models.Project{Name: "Project", TeamID: team.ID, CreatedBy: &owner.ID}
	require.NoError(t, NewBunProjectRepository(db).Create(ctx, project))
	return team, project
}
