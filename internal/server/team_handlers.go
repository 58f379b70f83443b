package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/services/team"
)

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addMemberRequest struct {
	Email string          `json:"email"`
	Role  models.TeamRole `json:"role"`
}

type teamResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type teamMemberResponse struct {
	UserID   int64           `json:"user_id"`
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

func newTeamResponse(t *models.Team) teamResponse {
	return teamResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
	}
}

// pathID parses a numeric URL parameter; a malformed id comes back as zero
// with ok false and the response already written.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// HandleCreateTeam creates a team owned by the caller.
func HandleCreateTeam(teamService *team.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTeamRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		created, err := teamService.Create(r.Context(), userFrom(r), req.Name, req.Description)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTeamResponse(created))
	}
}

// HandleListTeams returns the caller's teams.
func HandleListTeams(teamService *team.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := teamService.List(r.Context(), userFrom(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]teamResponse, 0, len(teams))
		for i := range teams {
			out = append(out, newTeamResponse(&teams[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleListTeamMembers returns the team roster.
func HandleListTeamMembers(teamService *team.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, ok := pathID(w, r, "teamID")
		if !ok {
			return
		}

		members, err := teamService.Members(r.Context(), userFrom(r), teamID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]teamMemberResponse, 0, len(members))
		for _, m := range members {
			out = append(out, teamMemberResponse{
				UserID:   m.UserID,
				Email:    m.Email,
				FullName: m.FullName,
				Role:     m.Role,
				JoinedAt: m.JoinedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleAddTeamMember adds a user to the team by email. Owners and admins
// only.
func HandleAddTeamMember(teamService *team.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, ok := pathID(w, r, "teamID")
		if !ok {
			return
		}
		var req addMemberRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Email == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}
		if req.Role != "" && !req.Role.Valid() {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}

		member, err := teamService.AddMember(r.Context(), userFrom(r), teamID, req.Email, req.Role)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"team_id": member.TeamID,
			"user_id": member.UserID,
			"role":    member.Role,
		})
	}
}
