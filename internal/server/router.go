package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lupamo/realtime-collab/internal/services/iam"
	"github.com/lupamo/realtime-collab/internal/services/project"
	"github.com/lupamo/realtime-collab/internal/services/task"
	"github.com/lupamo/realtime-collab/internal/services/team"
)

// RouterOptions controls the construction of the HTTP router. Services are
// required; the rest defaults sensibly when unset.
type RouterOptions struct {
	IAMService     *iam.Service
	Gate           *iam.Gate
	TeamService    *team.Service
	ProjectService *project.Service
	TaskService    *task.Service
	CORSOptions    *cors.Options
	Middleware     []func(http.Handler) http.Handler
	HealthHandler  http.HandlerFunc
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// all handlers mounted. Everything under /auth/me, /auth/logout,
// /auth/verify, and /api requires a valid access token.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	requireUser := RequireUser(opts.Gate)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", HandleRegister(opts.IAMService))
		r.Post("/login", HandleLogin(opts.IAMService))
		r.Post("/refresh", HandleRefresh(opts.IAMService))

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", HandleMe())
			r.Post("/logout", HandleLogout(opts.IAMService))
			r.Get("/verify", HandleVerify())
			r.Post("/verify", HandleVerify())
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", HandleCreateTeam(opts.TeamService))
			r.Get("/", HandleListTeams(opts.TeamService))
			r.Get("/{teamID}/members", HandleListTeamMembers(opts.TeamService))
			r.Post("/{teamID}/members", HandleAddTeamMember(opts.TeamService))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", HandleCreateProject(opts.ProjectService))
			r.Get("/", HandleListProjects(opts.ProjectService))
			r.Get("/{projectID}", HandleGetProject(opts.ProjectService))
			r.Post("/{projectID}/archive", HandleArchiveProject(opts.ProjectService))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", HandleCreateTask(opts.TaskService))
			r.Get("/", HandleListTasks(opts.TaskService))
			r.Get("/{taskID}", HandleGetTask(opts.TaskService))
			r.Put("/{taskID}", HandleUpdateTask(opts.TaskService))
			r.Patch("/{taskID}", HandleUpdateTask(opts.TaskService))
			r.Delete("/{taskID}", HandleDeleteTask(opts.TaskService))
			r.Post("/{taskID}/comments", HandleAddComment(opts.TaskService))
			r.Get("/{taskID}/comments", HandleListComments(opts.TaskService))
		})
	})

	return r
}
