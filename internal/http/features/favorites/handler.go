package favorites

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tendant/ayah-auth/internal/http/middleware"
	"github.com/tendant/ayah-auth/internal/httputil"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// Store persists bookmarked verses.
type Store interface {
	Add(ctx context.Context, userID uuid.UUID, ayah domain.Ayah) (*domain.Favorite, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error)
	Remove(ctx context.Context, userID uuid.UUID, ayahID string) error
}

// Handler handles the favorites endpoints. All routes require Auth.
type Handler struct {
	logger *slog.Logger
	store  Store
}

// NewHandler creates a new favorites handler.
func NewHandler(logger *slog.Logger, store Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// AddRequest bookmarks a verse.
type AddRequest struct {
	Ayah *domain.Ayah `json:"ayah"`
}

// RemoveRequest removes a bookmark.
type RemoveRequest struct {
	AyahID string `json:"ayahId"`
}

// Add bookmarks a verse for the current user.
// POST /favorites/add-favorite
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req AddRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.Ayah == nil || strings.TrimSpace(req.Ayah.ID) == "" {
		httputil.Error(w, http.StatusBadRequest, "Ayah is required")
		return
	}

	fav, err := h.store.Add(r.Context(), userID, *req.Ayah)
	if errors.Is(err, domain.ErrFavoriteExists) {
		httputil.Error(w, http.StatusOK, "Already in favorites")
		return
	}
	if err != nil {
		h.logger.Error("failed to add favorite", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, fav)
}

// List returns the bookmarked verses of a user. Only the owner may read
// the list.
// GET /favorites/get-favorite/{userId}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	requested, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil || requested != userID {
		httputil.Error(w, http.StatusForbidden, "Access denied")
		return
	}

	favs, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list favorites", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	ayahs := make([]domain.Ayah, 0, len(favs))
	for _, f := range favs {
		ayahs = append(ayahs, f.Ayah)
	}
	httputil.JSON(w, http.StatusOK, ayahs)
}

// Remove deletes a bookmark of the current user.
// DELETE /favorites/remove-favorite
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var req RemoveRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.AyahID) == "" {
		httputil.Error(w, http.StatusBadRequest, "ayahId is required")
		return
	}

	if err := h.store.Remove(r.Context(), userID, req.AyahID); err != nil {
		h.logger.Error("failed to remove favorite", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	httputil.JSON(w, http.StatusOK, httputil.MessageResponse{Message: "Removed from favorites"})
}
