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

// BunProjectRepository implements ProjectRepository using Bun ORM.
type BunProjectRepository struct {
	db *bun.DB
}

// NewBunProjectRepository creates a new Bun-based project repository.
func NewBunProjectRepository(db *bun.DB) *BunProjectRepository {
	return &BunProjectRepository{db: db}
}

// Create inserts a new project row.
func (r *BunProjectRepository) Create(ctx context.Context, project *models.Project) error {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := r.db.NewInsert().Model(project).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetScoped resolves a project only when the user holds a membership row on
// the owning team. A wrong id and an inaccessible project both come back as
// ErrNotFound so callers cannot probe for existence across teams.
func (r *BunProjectRepository) GetScoped(ctx context.Context, projectID, userID int64) (*models.Project, error) {
	project := new(models.Project)
	err := r.db.NewSelect().
		Model(project).
		Join("JOIN team_members AS tm ON tm.team_id = p.team_id").
		Where("p.id = ?", projectID).
		Where("tm.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("query project: %w", err)
	}
	return project, nil
}

// ListScoped returns the non-archived projects across the user's teams.
func (r *BunProjectRepository) ListScoped(ctx context.Context, userID int64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.NewSelect().
		Model(&projects).
		Join("JOIN team_members AS tm ON tm.team_id = p.team_id").
		Where("tm.user_id = ?", userID).
		Where("p.is_archived = ?", false).
		Order("p.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// SetArchived flips the project's archived flag.
func (r *BunProjectRepository) SetArchived(ctx context.Context, projectID int64, archived bool) error {
	result, err := r.db.NewUpdate().
		Model((*models.Project)(nil)).
		Set("is_archived = ?", archived).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", projectID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update project archived flag: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}
	return nil
}
