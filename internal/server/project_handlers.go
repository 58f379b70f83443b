package server

import (
	"net/http"
	"time"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/services/project"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TeamID      int64  `json:"team_id"`
}

type projectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TeamID      int64     `json:"team_id"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
}

func newProjectResponse(p *models.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		TeamID:      p.TeamID,
		CreatedBy:   p.CreatedBy,
		IsArchived:  p.IsArchived,
		CreatedAt:   p.CreatedAt,
	}
}

// HandleCreateProject creates a project in one of the caller's teams.
func HandleCreateProject(projectService *project.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if req.TeamID <= 0 {
			writeError(w, http.StatusBadRequest, "team_id is required")
			return
		}

		created, err := projectService.Create(r.Context(), userFrom(r), req.TeamID, req.Name, req.Description)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newProjectResponse(created))
	}
}

// HandleListProjects returns the caller's visible projects.
func HandleListProjects(projectService *project.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := projectService.List(r.Context(), userFrom(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]projectResponse, 0, len(projects))
		for i := range projects {
			out = append(out, newProjectResponse(&projects[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleGetProject resolves one project the caller can see.
func HandleGetProject(projectService *project.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := pathID(w, r, "projectID")
		if !ok {
			return
		}

		proj, err := projectService.Get(r.Context(), userFrom(r), projectID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newProjectResponse(proj))
	}
}

// HandleArchiveProject archives a project. Owners and admins only.
func HandleArchiveProject(projectService *project.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := pathID(w, r, "projectID")
		if !ok {
			return
		}

		if err := projectService.Archive(r.Context(), userFrom(r), projectID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "project archived"})
	}
}
