// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	sysauth "github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/httpjson"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves registration and login. Both return the same token/user
// shape so a fresh registration is an auto-login.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Tokens *sysauth.Tokens
	Users  *userstore.Store
	Limits *ratelimit.LoginLimiter
}

func NewHandler(db *mongo.Database, tokens *sysauth.Tokens, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		Tokens: tokens,
		Users:  userstore.New(db),
		Limits: ratelimit.NewLoginLimiter(),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    models.PublicView `json:"user"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  models.PublicView `json:"user"`
}

// HandleRegister creates an account and signs the new user in.
// POST /api/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	if allowed, reason := h.Limits.Check(r, ""); !allowed {
		httpjson.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	hash, err := sysauth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hashing failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			httpjson.Error(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.Log.Error("user create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not create session")
		return
	}

	httpjson.Write(w, http.StatusCreated, registerResponse{
		Message: "User created successfully!",
		Token:   token,
		User:    user.Public(),
	})
}

// HandleLogin verifies credentials and issues a session token.
// POST /api/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if allowed, reason := h.Limits.Check(r, req.Email); !allowed {
		httpjson.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == userstore.ErrNotFound {
			httpjson.Error(w, http.StatusBadRequest, "User does not exist")
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	if !sysauth.CheckPassword(user.PasswordHash, req.Password) {
		httpjson.Error(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	h.Limits.ResetEmail(req.Email)

	token, err := h.Tokens.Issue(*user)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not create session")
		return
	}

	httpjson.Write(w, http.StatusOK, loginResponse{
		Token: token,
		User:  user.Public(),
	})
}
