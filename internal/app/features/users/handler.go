// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

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

// Handler serves the user directory and profile updates.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Users *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:    db,
		Log:   logger,
		Users: userstore.New(db),
	}
}

type updateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleList returns every user's public view, for the assignment
// dropdown. Password hashes never leave the store layer.
// GET /api/users
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error("user list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list users")
		return
	}

	views := make([]models.PublicView, 0, len(all))
	for _, u := range all {
		views = append(views, u.Public())
	}

	httpjson.Write(w, http.StatusOK, views)
}

// HandleUpdate overwrites the caller's name and email.
// PUT /api/users/{userID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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
		httpjson.Error(w, http.StatusForbidden, "cannot update another user's profile")
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		httpjson.Error(w, http.StatusBadRequest, "name and email are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Users.UpdateProfile(ctx, userID, req.Name, req.Email)
	if err != nil {
		switch err {
		case userstore.ErrNotFound:
			httpjson.Error(w, http.StatusNotFound, "User not found")
		case userstore.ErrDuplicateEmail:
			httpjson.Error(w, http.StatusBadRequest, "User already exists")
		default:
			h.Log.Error("profile update failed", zap.Error(err), zap.String("user_id", userID.Hex()))
			httpjson.Error(w, http.StatusInternalServerError, "could not update profile")
		}
		return
	}

	httpjson.Write(w, http.StatusOK, updated.Public())
}
