package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

// BunCommentRepository implements CommentRepository using Bun ORM.
type BunCommentRepository struct {
	db *bun.DB
}

// NewBunCommentRepository creates a new Bun-based comment repository.
func NewBunCommentRepository(db *bun.DB) *BunCommentRepository {
	return &BunCommentRepository{db: db}
}

// Create inserts a new comment row.
func (r *BunCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := r.db.NewInsert().Model(comment).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListByTask returns a task's comments, oldest first.
func (r *BunCommentRepository) ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.NewSelect().
		Model(&comments).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}
