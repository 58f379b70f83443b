// Package project manages projects inside teams.
package project

import (
	"context"
	"fmt"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/services/iam"
	"github.com/lupamo/realtime-collab/internal/services/task"
)

// Service implements project operations on behalf of a user.
type Service struct {
	projects repository.ProjectRepository
	gate     *iam.Gate
}

// NewService constructs the project service.
func NewService(projects repository.ProjectRepository, gate *iam.Gate) *Service {
	return &Service{projects: projects, gate: gate}
}

// Create makes a project in the team. Any membership role suffices.
func (s *Service) Create(ctx context.Context, user *models.User, teamID int64, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", task.ErrInvalid)
	}
	if _, err := s.gate.AuthorizeTeamAccess(ctx, user, teamID); err != nil {
		return nil, err
	}

	proj := &models.Project{
		Name:        name,
		Description: description,
		TeamID:      teamID,
		CreatedBy:   &user.ID,
	}
	if err := s.projects.Create(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}

// Get resolves one project the user can see.
func (s *Service) Get(ctx context.Context, user *models.User, projectID int64) (*models.Project, error) {
	return s.projects.GetScoped(ctx, projectID, user.ID)
}

// List returns the non-archived projects across the user's teams.
func (s *Service) List(ctx context.Context, user *models.User) ([]models.Project, error) {
	return s.projects.ListScoped(ctx, user.ID)
}

// Archive hides the project from listings. Only owners and admins of the
// owning team may archive.
func (s *Service) Archive(ctx context.Context, user *models.User, projectID int64) error {
	proj, err := s.projects.GetScoped(ctx, projectID, user.ID)
	if err != nil {
		return err
	}
	if _, err := s.gate.AuthorizeTeamAccess(ctx, user, proj.TeamID, models.TeamRoleOwner, models.TeamRoleAdmin); err != nil {
		return err
	}
	return s.projects.SetArchived(ctx, projectID, true)
}
