package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/platform/uploads"
	"github.com/phrazzld/taskie-api/internal/service"
)

// ProfileHandler handles the profile of the authenticated user.
type ProfileHandler struct {
	users    service.UserService
	uploader *uploads.Uploader
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users service.UserService, uploader *uploads.Uploader, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		users:    users,
		uploader: uploader,
		logger:   logger.With(slog.String("component", "profile_handler")),
	}
}

// GetProfile handles GET /api/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetUser(r.Context(), current.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching profile")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "", user)
}

// UpdateProfile handles PUT /api/profile.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Please provide a valid date of birth", err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), current.ID, service.ProfileUpdate{
		FullName:    req.FullName,
		DateOfBirth: dob,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Error updating profile")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("profile updated",
		slog.String("user_id", user.ID.String()))
	shared.RespondWithSuccess(w, r, http.StatusOK, "Profile updated successfully", user)
}

// UploadAvatar handles POST /api/profile/avatar with an "avatar" file.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}

	if !shared.IsMultipart(r) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please upload an image file")
		return
	}
	if err := parseMultipart(w, r, 2*h.uploader.MaxBytes()); err != nil {
		rejectForm(w, r, err)
		return
	}
	fh, ok := formFile(r, "avatar")
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please upload an image file")
		return
	}

	url, err := h.uploader.Save(r.Context(), uploads.FolderAvatars, fh)
	if err != nil {
		HandleAPIError(w, r, err, "Error uploading avatar")
		return
	}
	user, err := h.users.SetAvatar(r.Context(), current.ID, url)
	if err != nil {
		HandleAPIError(w, r, err, "Error uploading avatar")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Avatar uploaded successfully",
		AvatarResponse{AvatarURL: user.AvatarURL})
}
