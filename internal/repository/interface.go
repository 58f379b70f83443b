package repository

import (
	"context"
	"time"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

// UserRepository exposes persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// RefreshTokenRepository persists refresh-token issuance records. Records are
// never deleted; revocation flips the Revoked flag.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	// Revoke marks the record matching (hash, userID) revoked. Revoking an
	// unknown or already-revoked token is not an error.
	Revoke(ctx context.Context, tokenHash string, userID int64) error
}

// TeamRepository exposes persistence operations for teams.
type TeamRepository interface {
	// CreateWithOwner inserts the team and its creator's owner-role membership
	// in a single transaction.
	CreateWithOwner(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	// ListForUser returns the teams the user is a member of, any role.
	ListForUser(ctx context.Context, userID int64) ([]models.Team, error)
}

// TeamMemberRecord is a membership row joined with the member's identity,
// for member listings.
type TeamMemberRecord struct {
	TeamID   int64           `bun:"team_id"`
	UserID   int64           `bun:"user_id"`
	Role     models.TeamRole `bun:"role"`
	JoinedAt time.Time       `bun:"joined_at"`
	Email    string          `bun:"email"`
	FullName string          `bun:"full_name"`
}

// MembershipRepository is the membership index: the (team, user) relation
// with role tags that every authorization decision derives from.
type MembershipRepository interface {
	// Get returns the membership row for the pair, or ErrNotFound.
	Get(ctx context.Context, teamID, userID int64) (*models.TeamMember, error)
	// Add inserts a membership; a row for the same pair yields
	// ErrAlreadyExists and the existing role is left untouched.
	Add(ctx context.Context, member *models.TeamMember) error
	ListByTeam(ctx context.Context, teamID int64) ([]TeamMemberRecord, error)
}

// ProjectRepository exposes persistence operations for projects. All reads
// are scoped by the caller's membership set.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	// GetScoped resolves a project only when the user has a membership row on
	// its team; absence and inaccessibility both yield ErrNotFound.
	GetScoped(ctx context.Context, projectID, userID int64) (*models.Project, error)
	// ListScoped returns non-archived projects in the user's teams.
	ListScoped(ctx context.Context, userID int64) ([]models.Project, error)
	SetArchived(ctx context.Context, projectID int64, archived bool) error
}

// TaskFilter narrows task listings. Nil fields are not applied.
type TaskFilter struct {
	ProjectID  *int64
	Status     *models.TaskStatus
	AssignedTo *int64
}

// TaskRepository exposes persistence operations for tasks. Reads are scoped
// by membership; UpdateVersioned is the single compare-and-set write.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetScoped(ctx context.Context, taskID, userID int64) (*models.Task, error)
	ListScoped(ctx context.Context, userID int64, filter TaskFilter) ([]models.Task, error)
	// Update persists the task's mutable fields without a version
	// precondition; the stored version still increments atomically. Used for
	// last-write-wins mutations.
	Update(ctx context.Context, task *models.Task) error
	// UpdateVersioned persists the task's mutable fields and bumps Version to
	// expectedVersion+1 in one atomic statement conditioned on the stored
	// version still being expectedVersion. A stale version yields
	// ErrVersionConflict; a missing row yields ErrNotFound. On success the
	// in-memory task reflects the new version.
	UpdateVersioned(ctx context.Context, task *models.Task, expectedVersion int64) error
}

// CommentRepository exposes persistence operations for task comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByTask(ctx context.Context, taskID int64) ([]models.Comment, error)
}
