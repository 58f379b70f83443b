package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TaskStatus is the workflow state of a task. The archived status doubles as
// the soft-delete marker and is reachable from any other status.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusArchived   TaskStatus = "archived"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone, TaskStatusArchived:
		return true
	}
	return false
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether the priority is one of the known values.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task belongs to exactly one project. Version implements optimistic
// concurrency control: it starts at 1 and increases by exactly 1 per
// successful mutation, and a writer supplying a stale version is rejected
// without applying anything.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tk"`

	ID          int64        `bun:"id,pk,autoincrement"`
	Title       string       `bun:"title,notnull"`
	Description string       `bun:"description"`
	Status      TaskStatus   `bun:"status,notnull,default:'todo'"`
	Priority    TaskPriority `bun:"priority,notnull,default:'medium'"`
	ProjectID   int64        `bun:"project_id,notnull"` // FK to projects(id), cascade delete
	AssignedTo  *int64       `bun:"assigned_to"`        // FK to users(id), set null on delete
	CreatedBy   *int64       `bun:"created_by"`         // FK to users(id), set null on delete
	DueDate     *time.Time   `bun:"due_date"`
	CompletedAt *time.Time   `bun:"completed_at"`
	Version     int64        `bun:"version,notnull,default:1"`
	CreatedAt   time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time    `bun:"updated_at,notnull,default:current_timestamp"`
}

// Comment belongs to one task and one user; it is removed with either parent.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Content   string    `bun:"content,notnull"`
	TaskID    int64     `bun:"task_id,notnull"` // FK to tasks(id), cascade delete
	UserID    int64     `bun:"user_id,notnull"` // FK to users(id), cascade delete
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
