// Package task implements the task mutation pipeline: membership-scoped
// reads, patch-style updates under optimistic concurrency, soft deletion, and
// comments, with activity events emitted after every successful write.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/events"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/services/iam"
)

// ErrInvalid is returned when an input fails validation before any state is
// touched.
var ErrInvalid = errors.New("invalid input")

// Optional distinguishes a field absent from a patch from one explicitly set,
// including set to null. The zero value is "absent".
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON marks the field present; a JSON null leaves Value nil.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return err
	}
	o.Value = value
	return nil
}

// CreateInput carries the fields of a new task.
type CreateInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	ProjectID   int64
	AssignedTo  *int64
	DueDate     *time.Time
}

// UpdateInput is a patch. Absent fields leave the task untouched; an explicit
// null clears a nullable field. ExpectedVersion, when set, makes the write
// conditional on the stored version.
type UpdateInput struct {
	Title           Optional[string]
	Description     Optional[string]
	Status          Optional[models.TaskStatus]
	Priority        Optional[models.TaskPriority]
	AssignedTo      Optional[int64]
	DueDate         Optional[time.Time]
	ExpectedVersion *int64
}

// Service is the task pipeline. Every operation takes the acting user and
// sees only tasks in that user's teams.
type Service struct {
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	comments  repository.CommentRepository
	publisher events.Publisher
	now       func() time.Time
}

// NewService constructs the task service.
func NewService(tasks repository.TaskRepository, projects repository.ProjectRepository, comments repository.CommentRepository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{
		tasks:     tasks,
		projects:  projects,
		comments:  comments,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create validates the input, confirms the user can reach the target project,
// and inserts the task at version 1.
func (s *Service) Create(ctx context.Context, user *models.User, in CreateInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, in.Status)
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalid, in.Priority)
	}

	// Unlike reads, creating into a project the user cannot reach is an
	// explicit denial, not a disappearing resource.
	if _, err := s.projects.GetScoped(ctx, in.ProjectID, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no access to project %d", iam.ErrForbidden, in.ProjectID)
		}
		return nil, err
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   &user.ID,
		DueDate:     in.DueDate,
	}
	if in.Status == models.TaskStatusDone {
		now := s.now()
		task.CompletedAt = &now
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.TypeTaskCreated,
		Data: map[string]any{
			"task_id":    task.ID,
			"project_id": task.ProjectID,
			"title":      task.Title,
			"created_by": user.ID,
		},
	})
	return task, nil
}

// Get resolves one task the user can see.
func (s *Service) Get(ctx context.Context, user *models.User, taskID int64) (*models.Task, error) {
	return s.tasks.GetScoped(ctx, taskID, user.ID)
}

// List returns the user's visible tasks, optionally filtered.
func (s *Service) List(ctx context.Context, user *models.User, filter repository.TaskFilter) ([]models.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, *filter.Status)
	}
	return s.tasks.ListScoped(ctx, user.ID, filter)
}

// Update applies the patch to a task the user can see. With ExpectedVersion
// set, a stale version is rejected before and during the write; without it
// the write is last-write-wins. Either way the version increments exactly
// once per successful mutation and an event describing the changed fields is
// emitted afterwards.
func (s *Service) Update(ctx context.Context, user *models.User, taskID int64, in UpdateInput) (*models.Task, error) {
	task, err := s.tasks.GetScoped(ctx, taskID, user.ID)
	if err != nil {
		return nil, err
	}

	if in.ExpectedVersion != nil && *in.ExpectedVersion != task.Version {
		return nil, fmt.Errorf("task %d is at version %d, not %d: %w",
			task.ID, task.Version, *in.ExpectedVersion, repository.ErrVersionConflict)
	}

	changed, err := s.apply(task, in)
	if err != nil {
		return nil, err
	}

	if in.ExpectedVersion != nil {
		err = s.tasks.UpdateVersioned(ctx, task, *in.ExpectedVersion)
	} else {
		err = s.tasks.Update(ctx, task)
	}
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.TypeTaskUpdated,
		Data: map[string]any{
			"task_id":    task.ID,
			"project_id": task.ProjectID,
			"version":    task.Version,
			"changes":    changed,
			"updated_by": user.ID,
		},
	})
	return task, nil
}

// apply mutates the in-memory task per the patch and returns the names of the
// changed fields.
func (s *Service) apply(task *models.Task, in UpdateInput) ([]string, error) {
	var changed []string

	if in.Title.Set {
		if in.Title.Value == nil || *in.Title.Value == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
		}
		task.Title = *in.Title.Value
		changed = append(changed, "title")
	}
	if in.Description.Set {
		if in.Description.Value == nil {
			task.Description = ""
		} else {
			task.Description = *in.Description.Value
		}
		changed = append(changed, "description")
	}
	if in.Status.Set {
		if in.Status.Value == nil || !in.Status.Value.Valid() {
			return nil, fmt.Errorf("%w: unknown status", ErrInvalid)
		}
		next := *in.Status.Value
		if next != task.Status {
			// Completion time tracks the transitions into and out of done.
			if next == models.TaskStatusDone {
				now := s.now()
				task.CompletedAt = &now
			} else if task.Status == models.TaskStatusDone {
				task.CompletedAt = nil
			}
		}
		task.Status = next
		changed = append(changed, "status")
	}
	if in.Priority.Set {
		if in.Priority.Value == nil || !in.Priority.Value.Valid() {
			return nil, fmt.Errorf("%w: unknown priority", ErrInvalid)
		}
		task.Priority = *in.Priority.Value
		changed = append(changed, "priority")
	}
	if in.AssignedTo.Set {
		task.AssignedTo = in.AssignedTo.Value
		changed = append(changed, "assigned_to")
	}
	if in.DueDate.Set {
		task.DueDate = in.DueDate.Value
		changed = append(changed, "due_date")
	}
	return changed, nil
}

// Delete archives the task. The row stays for history; it disappears from
// default listings. Deleting an already-archived task succeeds.
func (s *Service) Delete(ctx context.Context, user *models.User, taskID int64) error {
	task, err := s.tasks.GetScoped(ctx, taskID, user.ID)
	if err != nil {
		return err
	}

	task.Status = models.TaskStatusArchived
	task.CompletedAt = nil
	if err := s.tasks.Update(ctx, task); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.TypeTaskDeleted,
		Data: map[string]any{
			"task_id":    task.ID,
			"project_id": task.ProjectID,
			"deleted_by": user.ID,
		},
	})
	return nil
}

// AddComment attaches a comment to a task the user can see.
func (s *Service) AddComment(ctx context.Context, user *models.User, taskID int64, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}

	task, err := s.tasks.GetScoped(ctx, taskID, user.ID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		TaskID:  task.ID,
		UserID:  user.ID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		Type: events.TypeCommentAdded,
		Data: map[string]any{
			"task_id":    task.ID,
			"project_id": task.ProjectID,
			"comment_id": comment.ID,
			"user_id":    user.ID,
		},
	})
	return comment, nil
}

// ListComments returns a task's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, user *models.User, taskID int64) ([]models.Comment, error) {
	task, err := s.tasks.GetScoped(ctx, taskID, user.ID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByTask(ctx, task.ID)
}
