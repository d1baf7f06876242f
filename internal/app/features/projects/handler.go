// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"

	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	sysauth "github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves project creation, listing, deletion and invites.
type Handler struct {
	DB       *mongo.Database
	Client   *mongo.Client
	Log      *zap.Logger
	Projects *projectstore.Store
	Tasks    *taskstore.Store
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Client:   client,
		Log:      logger,
		Projects: projectstore.New(db),
		Tasks:    taskstore.New(db),
		Users:    userstore.New(db),
	}
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// HandleCreate creates a project owned by the caller.
// POST /api/projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := sysauth.CurrentIdentity(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httpjson.Error(w, http.StatusBadRequest, "project name is required")
		return
	}

	ownerID, err := primitive.ObjectIDFromHex(req.OwnerID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid ownerId")
		return
	}
	// The owner is the verified token subject, not whatever id the client
	// chooses to put in the body.
	if ownerID != identity.UserID {
		httpjson.Error(w, http.StatusForbidden, "cannot create a project owned by another user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	project, err := h.Projects.Create(ctx, req.Name, req.Description, ownerID)
	if err != nil {
		h.Log.Error("project create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create project")
		return
	}

	httpjson.Write(w, http.StatusCreated, project)
}

// HandleList lists the caller's projects.
// GET /api/projects/{userID}
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := sysauth.CurrentIdentity(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if userID != identity.UserID {
		httpjson.Error(w, http.StatusForbidden, "cannot list another user's projects")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projects, err := h.Projects.ListByMember(ctx, userID)
	if err != nil {
		h.Log.Error("project list failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not list projects")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	httpjson.Write(w, http.StatusOK, projects)
}

// HandleDelete deletes a project and every task under it. The two deletes
// run in one transaction where the deployment supports it; otherwise tasks
// go first so no orphaned task is ever visible for a listed project.
// DELETE /api/projects/{projectID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	project, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	cascade := func(ctx context.Context) error {
		if _, err := h.Tasks.DeleteByProject(ctx, project.ID); err != nil {
			return err
		}
		_, err := h.Projects.Delete(ctx, project.ID)
		return err
	}

	err := txn.WithTransaction(ctx, h.Client, cascade)
	if txn.IsNotSupported(err) {
		err = cascade(ctx)
	}
	if err != nil {
		h.Log.Error("project delete failed", zap.Error(err), zap.String("project_id", project.ID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete project")
		return
	}

	httpjson.Write(w, http.StatusOK, messageResponse{Message: "Project deleted"})
}

// HandleInvite adds a registered user to the project's membership set.
// POST /api/projects/{projectID}/invite
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	project, ok := h.requireMember(w, r)
	if !ok {
		return
	}

	var req inviteRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	invitee, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "User not found. Tell them to register first!")
			return
		}
		h.Log.Error("invitee lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not invite user")
		return
	}

	if err := h.Projects.AddMember(ctx, project.ID, invitee.ID); err != nil {
		switch err {
		case projectstore.ErrAlreadyMember:
			httpjson.Error(w, http.StatusBadRequest, "User is already a member of this project")
		case projectstore.ErrNotFound:
			httpjson.Error(w, http.StatusNotFound, "Project not found")
		default:
			h.Log.Error("invite failed", zap.Error(err), zap.String("project_id", project.ID.Hex()))
			httpjson.Error(w, http.StatusInternalServerError, "could not invite user")
		}
		return
	}

	httpjson.Write(w, http.StatusOK, messageResponse{Message: "User added to project successfully!"})
}

// requireMember loads the project from the URL and verifies the caller is
// in its membership set. On failure the response has been written.
func (h *Handler) requireMember(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	identity, ok := sysauth.CurrentIdentity(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid project id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	project, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		if err == projectstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "Project not found")
			return nil, false
		}
		h.Log.Error("project lookup failed", zap.Error(err), zap.String("project_id", projectID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load project")
		return nil, false
	}

	if !project.HasMember(identity.UserID) {
		httpjson.Error(w, http.StatusForbidden, "not a member of this project")
		return nil, false
	}
	return project, true
}
