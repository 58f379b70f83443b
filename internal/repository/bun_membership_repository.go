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

// BunMembershipRepository implements MembershipRepository using Bun ORM.
type BunMembershipRepository struct {
	db *bun.DB
}

// NewBunMembershipRepository creates a new Bun-based membership repository.
func NewBunMembershipRepository(db *bun.DB) *BunMembershipRepository {
	return &BunMembershipRepository{db: db}
}

// Get returns the membership row for (teamID, userID), or ErrNotFound.
func (r *BunMembershipRepository) Get(ctx context.Context, teamID, userID int64) (*models.TeamMember, error) {
	return readWithRetry(ctx, func() (*models.TeamMember, error) {
		member := new(models.TeamMember)
		err := r.db.NewSelect().
			Model(member).
			Where("team_id = ?", teamID).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("membership (team %d, user %d): %w", teamID, userID, ErrNotFound)
			}
			return nil, fmt.Errorf("query membership: %w", err)
		}
		return member, nil
	})
}

// Add inserts a membership row. The composite primary key rejects a second
// row for the same (team, user) pair, which surfaces as ErrAlreadyExists; the
// existing role is never overwritten by a re-add.
func (r *BunMembershipRepository) Add(ctx context.Context, member *models.TeamMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}

	_, err := r.db.NewInsert().Model(member).Exec(ctx)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("membership (team %d, user %d): %w", member.TeamID, member.UserID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// ListByTeam returns the team's membership rows joined with each member's
// identity, oldest joiner first.
func (r *BunMembershipRepository) ListByTeam(ctx context.Context, teamID int64) ([]TeamMemberRecord, error) {
	var records []TeamMemberRecord
	err := r.db.NewSelect().
		TableExpr("team_members AS tm").
		ColumnExpr("tm.team_id, tm.user_id, tm.role, tm.joined_at").
		ColumnExpr("u.email, u.full_name").
		Join("JOIN users AS u ON u.id = tm.user_id").
		Where("tm.team_id = ?", teamID).
		Order("tm.joined_at ASC").
		Scan(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	if records == nil {
		records = []TeamMemberRecord{}
	}
	return records, nil
}
