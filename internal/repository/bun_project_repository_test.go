package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

func TestProjectScoping(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	projects := NewBunProjectRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	outsider := seedUser(t, db, "outsider@example.com")
	_, project := seedTeamWithProject(t, db, owner)

	got, err := projects.GetScoped(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)

	_, err = projects.GetScoped(ctx, project.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = projects.GetScoped(ctx, 9999, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectListExcludesArchived(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	projects := NewBunProjectRepository(db)
	owner := seedUser(t, db, "owner@example.com")
	team, project := seedTeamWithProject(t, db, owner)

	second := &models.Project{Name: "Second", TeamID: team.ID, CreatedBy: &owner.ID}
	require.NoError(t, projects.Create(ctx, second))

	require.NoError(t, projects.SetArchived(ctx, project.ID, true))

	listed, err := projects.ListScoped(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Second", listed[0].Name)
}
