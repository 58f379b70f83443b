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

// BunTaskRepository implements TaskRepository using Bun ORM.
type BunTaskRepository struct {
	db *bun.DB
}

// NewBunTaskRepository creates a new Bun-based task repository.
func NewBunTaskRepository(db *bun.DB) *BunTaskRepository {
	return &BunTaskRepository{db: db}
}

// Create inserts a new task row. Version always starts at 1.
func (r *BunTaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.Version = 1

	_, err := r.db.NewInsert().Model(task).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetScoped resolves a task only when the user holds a membership row on the
// team owning the task's project. A wrong id and an inaccessible task both
// come back as ErrNotFound.
func (r *BunTaskRepository) GetScoped(ctx context.Context, taskID, userID int64) (*models.Task, error) {
	task := new(models.Task)
	err := r.db.NewSelect().
		Model(task).
		Join("JOIN projects AS p ON p.id = tk.project_id").
		Join("JOIN team_members AS tm ON tm.team_id = p.team_id").
		Where("tk.id = ?", taskID).
		Where("tm.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListScoped returns tasks across the user's teams, newest first, narrowed by
// the filter's non-nil fields.
func (r *BunTaskRepository) ListScoped(ctx context.Context, userID int64, filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task
	q := r.db.NewSelect().
		Model(&tasks).
		Join("JOIN projects AS p ON p.id = tk.project_id").
		Join("JOIN team_members AS tm ON tm.team_id = p.team_id").
		Where("tm.user_id = ?", userID)

	if filter.ProjectID != nil {
		q = q.Where("tk.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		q = q.Where("tk.status = ?", *filter.Status)
	} else {
		// Archived tasks only show up when asked for by status.
		q = q.Where("tk.status != ?", models.TaskStatusArchived)
	}
	if filter.AssignedTo != nil {
		q = q.Where("tk.assigned_to = ?", *filter.AssignedTo)
	}

	if err := q.Order("tk.created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// setMutableColumns writes the task's mutable fields as explicit SET
// expressions. Field columns and the version expression must go through the
// same mechanism; mixing a model column list with raw Set clauses makes bun
// keep only the latter.
func setMutableColumns(q *bun.UpdateQuery, task *models.Task) *bun.UpdateQuery {
	return q.
		Set("title = ?", task.Title).
		Set("description = ?", task.Description).
		Set("status = ?", task.Status).
		Set("priority = ?", task.Priority).
		Set("assigned_to = ?", task.AssignedTo).
		Set("due_date = ?", task.DueDate).
		Set("completed_at = ?", task.CompletedAt).
		Set("updated_at = ?", task.UpdatedAt)
}

// Update persists the task's mutable fields unconditionally. The version
// still bumps atomically inside the statement, so interleaved writers each
// get a distinct version with last-write-wins contents. Used when the caller
// supplied no expected version.
func (r *BunTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()

	q := r.db.NewUpdate().Model((*models.Task)(nil))
	result, err := setMutableColumns(q, task).
		Set("version = version + 1").
		Where("id = ?", task.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %d: %w", task.ID, ErrNotFound)
	}

	// Re-read the version for the caller. A concurrent bump landing in
	// between is harmless, the value only feeds responses and events.
	err = r.db.NewSelect().
		Model((*models.Task)(nil)).
		Column("version").
		Where("id = ?", task.ID).
		Scan(ctx, &task.Version)
	if err != nil {
		return fmt.Errorf("read task version: %w", err)
	}
	return nil
}

// UpdateVersioned persists the task's mutable fields under the optimistic
// version check. The compare and the increment execute as one conditional
// UPDATE, so two writers racing from the same version cannot both succeed;
// the loser's statement matches zero rows and nothing is applied.
func (r *BunTaskRepository) UpdateVersioned(ctx context.Context, task *models.Task, expectedVersion int64) error {
	task.UpdatedAt = time.Now()

	q := r.db.NewUpdate().Model((*models.Task)(nil))
	result, err := setMutableColumns(q, task).
		Set("version = ?", expectedVersion+1).
		Where("id = ?", task.ID).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Zero rows means either the row is gone or another writer moved the
		// version first; re-read to tell the two apart.
		exists, lookupErr := r.db.NewSelect().
			Model((*models.Task)(nil)).
			Where("id = ?", task.ID).
			Exists(ctx)
		if lookupErr != nil {
			return fmt.Errorf("verify task after conflict: %w", lookupErr)
		}
		if !exists {
			return fmt.Errorf("task %d: %w", task.ID, ErrNotFound)
		}
		return fmt.Errorf("task %d at version %d: %w", task.ID, expectedVersion, ErrVersionConflict)
	}

	task.Version = expectedVersion + 1
	return nil
}
