package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/ayah-auth/internal/http/middleware"
	"github.com/tendant/ayah-auth/internal/httputil"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// Profiles loads and updates accounts by ID.
type Profiles interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*domain.User, error)
}

// Handler handles user profile endpoints.
type Handler struct {
	logger *slog.Logger
	users  Profiles
}

// NewHandler creates a new me handler.
func NewHandler(logger *slog.Logger, users Profiles) *Handler {
	return &Handler{logger: logger, users: users}
}

// UserResponse represents the user profile response.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateRequest changes the profile fields.
type UpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetMe returns the current user's profile.
// GET /auth/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, userID)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(user))
}

// UpdateMe changes the current user's name and email.
// PUT /auth/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req UpdateRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, req.Name, req.Email)
	if err != nil {
		h.writeError(w, err, userID)
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(user))
}

func toResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.DisplayName(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, userID uuid.UUID) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		httputil.Error(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrEmailInUse):
		httputil.Error(w, http.StatusBadRequest, "Email already in use")
	case errors.Is(err, domain.ErrUserNotFound):
		httputil.Error(w, http.StatusNotFound, "User not found")
	default:
		h.logger.Error("profile request failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "Server error")
	}
}
