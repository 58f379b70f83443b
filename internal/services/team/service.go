// Package team manages teams and their membership rosters.
package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/services/iam"
	"github.com/lupamo/realtime-collab/internal/services/task"
)

// Service implements team operations. All of them act on behalf of a user
// and enforce that user's membership.
type Service struct {
	teams       repository.TeamRepository
	memberships repository.MembershipRepository
	users       repository.UserRepository
	gate        *iam.Gate
}

// NewService constructs the team service.
func NewService(teams repository.TeamRepository, memberships repository.MembershipRepository, users repository.UserRepository, gate *iam.Gate) *Service {
	return &Service{teams: teams, memberships: memberships, users: users, gate: gate}
}

// Create makes a team owned by the user. The owner membership row is written
// in the same transaction as the team, so a team is never observable without
// its owner.
func (s *Service) Create(ctx context.Context, owner *models.User, name, description string) (*models.Team, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", task.ErrInvalid)
	}
	team := &models.Team{
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
	}
	if err := s.teams.CreateWithOwner(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// List returns the teams the user belongs to.
func (s *Service) List(ctx context.Context, user *models.User) ([]models.Team, error) {
	return s.teams.ListForUser(ctx, user.ID)
}

// Members returns the team roster. Any membership role grants read access.
func (s *Service) Members(ctx context.Context, user *models.User, teamID int64) ([]repository.TeamMemberRecord, error) {
	if _, err := s.gate.AuthorizeTeamAccess(ctx, user, teamID); err != nil {
		return nil, err
	}
	return s.memberships.ListByTeam(ctx, teamID)
}

// AddMember adds the user identified by email to the team with the given
// role. Only owners and admins may do this. A member who is already on the
// team surfaces as repository.ErrAlreadyExists with their role untouched.
func (s *Service) AddMember(ctx context.Context, actor *models.User, teamID int64, email string, role models.TeamRole) (*models.TeamMember, error) {
	if _, err := s.gate.AuthorizeTeamAccess(ctx, actor, teamID, models.TeamRoleOwner, models.TeamRoleAdmin); err != nil {
		return nil, err
	}

	if role == "" {
		role = models.TeamRoleMember
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", task.ErrInvalid, role)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, repository.ErrNotFound)
		}
		return nil, err
	}

	member := &models.TeamMember{
		TeamID: teamID,
		UserID: user.ID,
		Role:   role,
	}
	if err := s.memberships.Add(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}
