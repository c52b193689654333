package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/platform/uploads"
	"github.com/phrazzld/taskie-api/internal/service"
	"github.com/phrazzld/taskie-api/internal/service/auth"
)

// AuthHandler handles registration, login and account requests.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	uploader   *uploads.Uploader
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	uploader *uploads.Uploader,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		uploader:   uploader,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register. The body is JSON, or a
// multipart form with an optional proofOfExperience image.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if shared.IsMultipart(r) {
		if err := parseMultipart(w, r, 2*h.uploader.MaxBytes()); err != nil {
			rejectForm(w, r, err)
			return
		}
		req = RegisterRequest{
			FullName:        r.FormValue("fullName"),
			DateOfBirth:     r.FormValue("dateOfBirth"),
			Email:           r.FormValue("email"),
			Phone:           r.FormValue("phone"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirmPassword"),
		}
	} else if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Please provide a valid date of birth", err)
		return
	}

	var proofURL string
	if fh, ok := formFile(r, "proofOfExperience"); ok {
		proofURL, err = h.uploader.Save(r.Context(), uploads.FolderProofs, fh)
		if err != nil {
			HandleAPIError(w, r, err, "Error registering user")
			return
		}
	}

	user, err := h.users.Register(r.Context(), service.RegisterParams{
		FullName:             req.FullName,
		DateOfBirth:          dob,
		Email:                req.Email,
		Phone:                req.Phone,
		Password:             req.Password,
		ConfirmPassword:      req.ConfirmPassword,
		ProofOfExperienceURL: proofURL,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Error registering user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to generate token", slog.String("user_id", user.ID.String()))
		HandleAPIError(w, r, err, "Error registering user")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusCreated, "User registered successfully", AuthResponse{
		ID:          user.ID,
		FullName:    user.FullName,
		Email:       user.Email,
		Phone:       user.Phone,
		CurrentRole: user.CurrentRole,
		Token:       token,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred during login. Please try again later."

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	user, err := h.users.Login(r.Context(), req.EmailOrPhone, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Login successful", AuthResponse{
		ID:          user.ID,
		FullName:    user.FullName,
		Email:       user.Email,
		Phone:       user.Phone,
		CurrentRole: user.CurrentRole,
		AvatarURL:   user.AvatarURL,
		Token:       token,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.respondWithCurrentUser(w, r, "Error fetching user data")
}

// respondWithCurrentUser reloads the authenticated user from the store.
func (h *AuthHandler) respondWithCurrentUser(w http.ResponseWriter, r *http.Request, failure string) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetUser(r.Context(), current.ID)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "", user)
}

// SwitchRole handles PUT /api/auth/role.
func (h *AuthHandler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SwitchRoleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, service.ErrInvalidRole, "")
		return
	}

	user, err := h.users.SwitchRole(r.Context(), current.ID, req.Role)
	if err != nil {
		HandleAPIError(w, r, err, "Error switching role")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK,
		fmt.Sprintf("Role switched to %s successfully", user.CurrentRole),
		RoleResponse{CurrentRole: user.CurrentRole})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), current.ID, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Error changing password")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Password changed successfully", nil)
}

// rejectForm answers a multipart body that could not be parsed.
func rejectForm(w http.ResponseWriter, r *http.Request, err error) {
	if isBodyTooLarge(err) {
		HandleAPIError(w, r, uploads.ErrFileTooLarge, "")
		return
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
}
