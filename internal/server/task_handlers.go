package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lupamo/realtime-collab/internal/db/models"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/services/task"
)

type createTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	ProjectID   int64               `json:"project_id"`
	AssignedTo  *int64              `json:"assigned_to"`
	DueDate     *time.Time          `json:"due_date"`
}

// updateTaskRequest is a patch. Fields left out of the body are not applied;
// an explicit null clears the nullable ones.
type updateTaskRequest struct {
	Title           task.Optional[string]              `json:"title"`
	Description     task.Optional[string]              `json:"description"`
	Status          task.Optional[models.TaskStatus]   `json:"status"`
	Priority        task.Optional[models.TaskPriority] `json:"priority"`
	AssignedTo      task.Optional[int64]               `json:"assigned_to"`
	DueDate         task.Optional[time.Time]           `json:"due_date"`
	ExpectedVersion *int64                             `json:"expected_version"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}

type taskResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	ProjectID   int64               `json:"project_id"`
	AssignedTo  *int64              `json:"assigned_to,omitempty"`
	CreatedBy   *int64              `json:"created_by,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Version     int64               `json:"version"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type commentResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ProjectID:   t.ProjectID,
		AssignedTo:  t.AssignedTo,
		CreatedBy:   t.CreatedBy,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func newCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Content:   c.Content,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
	}
}

// taskFilterFromQuery builds the listing filter from query parameters.
// Unknown parameters are ignored; malformed ones are a bad request.
func taskFilterFromQuery(w http.ResponseWriter, r *http.Request) (repository.TaskFilter, bool) {
	var filter repository.TaskFilter

	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid project_id")
			return filter, false
		}
		filter.ProjectID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return filter, false
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("assigned_to"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid assigned_to")
			return filter, false
		}
		filter.AssignedTo = &id
	}
	return filter, true
}

// HandleCreateTask creates a task in a project the caller can reach.
func HandleCreateTask(taskService *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTaskRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ProjectID <= 0 {
			writeError(w, http.StatusBadRequest, "project_id is required")
			return
		}

		created, err := taskService.Create(r.Context(), userFrom(r), task.CreateInput{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
			ProjectID:   req.ProjectID,
			AssignedTo:  req.AssignedTo,
			DueDate:     req.DueDate,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTaskResponse(created))
	}
}

// HandleListTasks lists the caller's visible tasks, with optional project_id,
// status, and assigned_to filters.
func HandleListTasks(taskService *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, ok := taskFilterFromQuery(w, r)
		if !ok {
			return
		}

		tasks, err := taskService.List(r.Context(), userFrom(r), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]taskResponse, 0, len(tasks))
		for i := range tasks {
			out = append(out, newTaskResponse(&tasks[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleGetTask resolves one task.
func HandleGetTask(taskService *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := pathID(w, r, "taskID")
		if !ok {
			return
		}

		found, err := taskService.Get(r.Context(), userFrom(r), taskID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTaskResponse(found))
	}
}

// HandleUpdateTask applies a patch to a task, optionally conditioned on
// expected_version.
func HandleUpdateTask(taskService *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := pathID(w, r, "taskID")
		if !ok {
			return
		}
		var req updateTaskRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		updated, err := taskService.Update(r.Context(), userFrom(r), taskID, task.UpdateInput{
			Title:           req.Title,
			Description:     req.Description,
			Status:          req.Status,
			Priority:        req.Priority,
			AssignedTo:      req.AssignedTo,
			DueDate:         req.DueDate,
			ExpectedVersion: req.ExpectedVersion,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTaskResponse(updated))
	}
}

// HandleDeleteTask archives a task.
func HandleDeleteTask(taskService *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := pathID(w, r, "taskID")
		if !ok {
			return
		}

		if err := taskService.Delete(r.Context(), userFrom(r), taskID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleAddComment attaches a comment to a task.
func HandleAddComment(taskService *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := pathID(w, r, "taskID")
		if !ok {
			return
		}
		var req createCommentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		comment, err := taskService.AddComment(r.Context(), userFrom(r), taskID, req.Content)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newCommentResponse(comment))
	}
}

// HandleListComments lists a task's comments, oldest first.
func HandleListComments(taskService *task.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, ok := pathID(w, r, "taskID")
		if !ok {
			return
		}

		comments, err := taskService.ListComments(r.Context(), userFrom(r), taskID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]commentResponse, 0, len(comments))
		for i := range comments {
			out = append(out, newCommentResponse(&comments[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
