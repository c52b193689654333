package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/service"
)

// FavoriteHandler handles the favorites of taskers.
type FavoriteHandler struct {
	favorites service.FavoriteService
	logger    *slog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favorites service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoriteHandler{
		favorites: favorites,
		logger:    logger.With(slog.String("component", "favorite_handler")),
	}
}

// AddFavorite handles POST /api/favorites.
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AddFavoriteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	taskID, err := parseOptionalUUID("taskId", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	fav, err := h.favorites.Add(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Error adding favorite")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusCreated, "Task added to favorites", fav)
}

// GetFavorites handles GET /api/favorites.
func (h *FavoriteHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	favs, err := h.favorites.List(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching favorites")
		return
	}
	shared.RespondWithList(w, r, favs)
}

// CheckFavorite handles GET /api/favorites/check/{taskId}.
func (h *FavoriteHandler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	user, taskID, ok := handleUserAndPathUUID(w, r, "taskId", h.logger)
	if !ok {
		return
	}
	favorited, err := h.favorites.IsFavorited(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Error checking favorite status")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "", FavoriteStatusResponse{IsFavorited: favorited})
}

// RemoveFavorite handles DELETE /api/favorites/{taskId}.
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, taskID, ok := handleUserAndPathUUID(w, r, "taskId", h.logger)
	if !ok {
		return
	}
	if err := h.favorites.Remove(r.Context(), user.ID, taskID); err != nil {
		HandleAPIError(w, r, err, "Error removing favorite")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "Task removed from favorites", nil)
}
