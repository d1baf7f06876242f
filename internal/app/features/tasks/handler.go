// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"net/http"
	"time"

	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	sysauth "github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the task workflow: create, list, status, assignment and
// the comment thread. Every mutation is scoped to the parent project's
// membership.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Tasks    *taskstore.Store
	Projects *projectstore.Store
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Tasks:    taskstore.New(db),
		Projects: projectstore.New(db),
		Users:    userstore.New(db),
	}
}

type createRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Project     string        `json:"project"`
	Status      models.Status `json:"status"`
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

type assignRequest struct {
	UserID *string `json:"userId"`
}

type commentRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// HandleCreate creates a task under a project the caller belongs to.
// POST /api/tasks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectID, err := primitive.ObjectIDFromHex(req.Project)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}
	if !h.authorizeProject(w, r, projectID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.Create(ctx, models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ProjectID:   projectID,
	})
	if err != nil {
		switch err {
		case taskstore.ErrTitleRequired, taskstore.ErrBadStatus:
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("task create failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "could not create task")
		}
		return
	}

	httpjson.Write(w, http.StatusCreated, newTaskView(task, nil))
}

// HandleListByProject lists a project's tasks with resolved assignees.
// GET /api/tasks/{projectID}
func (h *Handler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}
	if !h.authorizeProject(w, r, projectID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tasks, err := h.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		h.Log.Error("task list failed", zap.Error(err), zap.String("project_id", projectID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not list tasks")
		return
	}

	views, err := h.resolveMany(ctx, tasks)
	if err != nil {
		h.Log.Error("assignee resolution failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list tasks")
		return
	}

	httpjson.Write(w, http.StatusOK, views)
}

// HandleSetStatus moves a task to any of the three workflow statuses.
// PATCH /api/tasks/{taskID}
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadAuthorizedTask(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Tasks.SetStatus(ctx, task.ID, req.Status)
	if err != nil {
		h.writeTaskError(w, err, task.ID)
		return
	}
	h.writeResolved(w, r, *updated)
}

// HandleAssign sets or clears the task's assignee. A null or absent
// userId clears the assignment.
// PATCH /api/tasks/{taskID}/assign
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadAuthorizedTask(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var assignee *primitive.ObjectID
	if req.UserID != nil && *req.UserID != "" {
		id, err := primitive.ObjectIDFromHex(*req.UserID)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "invalid user id")
			return
		}
		assignee = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Tasks.Assign(ctx, task.ID, assignee)
	if err != nil {
		h.writeTaskError(w, err, task.ID)
		return
	}
	h.writeResolved(w, r, *updated)
}

// HandleComment appends to the task's comment thread and returns the full
// updated task.
// POST /api/tasks/{taskID}/comment
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadAuthorizedTask(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		httpjson.Error(w, http.StatusBadRequest, "comment text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Tasks.AddComment(ctx, task.ID, models.Comment{
		User: req.User,
		Text: req.Text,
		Date: time.Now().UTC(),
	})
	if err != nil {
		h.writeTaskError(w, err, task.ID)
		return
	}
	h.writeResolved(w, r, *updated)
}

// loadAuthorizedTask loads the task from the URL and checks the caller
// belongs to its project. On failure the response has been written.
func (h *Handler) loadAuthorizedTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid task id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == taskstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "Task not found")
			return nil, false
		}
		h.Log.Error("task lookup failed", zap.Error(err), zap.String("task_id", taskID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load task")
		return nil, false
	}

	if !h.authorizeProject(w, r, task.ProjectID) {
		return nil, false
	}
	return task, true
}

// authorizeProject verifies the caller is a member of the project. On
// failure the response has been written.
func (h *Handler) authorizeProject(w http.ResponseWriter, r *http.Request, projectID primitive.ObjectID) bool {
	identity, ok := sysauth.CurrentIdentity(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	project, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if err == projectstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "Project not found")
			return false
		}
		h.Log.Error("project lookup failed", zap.Error(err), zap.String("project_id", projectID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load project")
		return false
	}

	if !project.HasMember(identity.UserID) {
		httpjson.Error(w, http.StatusForbidden, "not a member of this project")
		return false
	}
	return true
}

// writeResolved renders a task with its assignee resolved.
func (h *Handler) writeResolved(w http.ResponseWriter, r *http.Request, task models.Task) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.resolveOne(ctx, task)
	if err != nil {
		h.Log.Error("assignee resolution failed", zap.Error(err), zap.String("task_id", task.ID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not render task")
		return
	}
	httpjson.Write(w, http.StatusOK, view)
}

// writeTaskError maps store errors from task mutations.
func (h *Handler) writeTaskError(w http.ResponseWriter, err error, taskID primitive.ObjectID) {
	switch err {
	case taskstore.ErrNotFound:
		httpjson.Error(w, http.StatusNotFound, "Task not found")
	case taskstore.ErrBadStatus:
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error("task mutation failed", zap.Error(err), zap.String("task_id", taskID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not update task")
	}
}
