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

// BunTeamRepository implements TeamRepository using Bun ORM.
type BunTeamRepository struct {
	db *bun.DB
}

// NewBunTeamRepository creates a new Bun-based team repository.
func NewBunTeamRepository(db *bun.DB) *BunTeamRepository {
	return &BunTeamRepository{db: db}
}

// CreateWithOwner inserts the team and the creator's owner membership in one
// transaction, so a team never exists without an owner-role member.
func (r *BunTeamRepository) CreateWithOwner(ctx context.Context, team *models.Team) error {
	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(team).Exec(ctx); err != nil {
			return fmt.Errorf("insert team: %w", err)
		}

		member := &models.TeamMember{
			TeamID:   team.ID,
			UserID:   team.OwnerID,
			Role:     models.TeamRoleOwner,
			JoinedAt: now,
		}
		if _, err := tx.NewInsert().Model(member).Exec(ctx); err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// GetByID fetches a team by primary key.
func (r *BunTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	team := new(models.Team)
	err := r.db.NewSelect().Model(team).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("team %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query team: %w", err)
	}
	return team, nil
}

// ListForUser returns all teams the user has a membership row in.
func (r *BunTeamRepository) ListForUser(ctx context.Context, userID int64) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.NewSelect().
		Model(&teams).
		Join("JOIN team_members AS tm ON tm.team_id = t.id").
		Where("tm.user_id = ?", userID).
		Order("t.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	if teams == nil {
		teams = []models.Team{}
	}
	return teams, nil
}
