package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TeamRole is the role a member holds within a team.
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
	TeamRoleViewer TeamRole = "viewer"
)

// Valid reports whether the role is one of the known values.
func (r TeamRole) Valid() bool {
	switch r {
	case TeamRoleOwner, TeamRoleAdmin, TeamRoleMember, TeamRoleViewer:
		return true
	}
	return false
}

// Managing reports whether the role grants team management rights
// (adding members, archiving projects).
func (r TeamRole) Managing() bool {
	return r == TeamRoleOwner || r == TeamRoleAdmin
}

// Team is a named group of users. Every team has exactly one owner and a
// membership set; the creator is inserted as an owner-role member in the same
// transaction that creates the team.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	OwnerID     int64     `bun:"owner_id,notnull"` // FK to users(id), cascade delete
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// TeamMember is the (team, user) membership relation with its role tag.
// The composite primary key guarantees at most one role per user per team;
// re-adding an existing member must be rejected, never overwritten.
type TeamMember struct {
	bun.BaseModel `bun:"table:team_members,alias:tm"`

	TeamID   int64     `bun:"team_id,pk"` // FK to teams(id), cascade delete
	UserID   int64     `bun:"user_id,pk"` // FK to users(id), cascade delete
	Role     TeamRole  `bun:"role,notnull,default:'member'"`
	JoinedAt time.Time `bun:"joined_at,notnull,default:current_timestamp"`
}

// Project belongs to exactly one team. Access to a project is derived from
// team membership, never from the creator reference, which is nulled when the
// creating user is deleted.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
	TeamID      int64     `bun:"team_id,notnull"` // FK to teams(id), cascade delete
	CreatedBy   *int64    `bun:"created_by"`      // FK to users(id), set null on delete
	IsArchived  bool      `bun:"is_archived,notnull,default:false"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
