package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/seed"
	"github.com/phrazzld/taskie-api/internal/service"
)

// AdminHandler handles the administration endpoints.
type AdminHandler struct {
	admin  service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin service.AdminService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		admin:  admin,
		logger: logger.With(slog.String("component", "admin_handler")),
	}
}

// GetUsers handles GET /api/admin/users.
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching users")
		return
	}
	shared.RespondWithList(w, r, users)
}

// GetTasks handles GET /api/admin/tasks.
func (h *AdminHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.admin.ListTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching tasks")
		return
	}
	shared.RespondWithList(w, r, tasks)
}

// GetStats handles GET /api/admin/stats.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching statistics")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "", stats)
}

// Seed handles POST /api/admin/seed with an optional {force, comprehensive} body.
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var opts seed.Options
	if err := shared.DecodeOptionalJSON(r, &opts); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	result, err := h.admin.Seed(r.Context(), opts)
	if err != nil {
		HandleAPIError(w, r, err, "Error seeding database")
		return
	}

	h.audit(r, "database seeded", slog.String("mode", opts.Mode()))
	shared.RespondWithSuccess(w, r, http.StatusOK, "Database seeded successfully", result)
}

// Reset handles POST /api/admin/reset.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.Reset(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Error resetting database")
		return
	}

	h.audit(r, "database reset")
	shared.RespondWithSuccess(w, r, http.StatusOK, "Database reset successfully", result)
}

// ResetAndSeed handles POST /api/admin/reset-and-seed with an optional
// {comprehensive} body.
func (h *AdminHandler) ResetAndSeed(w http.ResponseWriter, r *http.Request) {
	var req ResetAndSeedRequest
	if err := shared.DecodeOptionalJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	reset, seeded, err := h.admin.ResetAndSeed(r.Context(), req.Comprehensive)
	if err != nil {
		HandleAPIError(w, r, err, "Error resetting and seeding database")
		return
	}

	h.audit(r, "database reset and seeded", slog.Bool("comprehensive", req.Comprehensive))
	shared.RespondWithSuccess(w, r, http.StatusOK, "Database reset and seeded successfully", ResetAndSeedResponse{
		Reset: reset,
		Seed:  seeded,
	})
}

// audit logs a destructive admin action with the acting user.
func (h *AdminHandler) audit(r *http.Request, msg string, attrs ...any) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	if user, ok := getUserFromContext(r); ok {
		log = log.With(slog.String("admin_id", user.ID.String()))
	}
	log.Warn(msg, attrs...)
}

// ResetAndSeedResponse is the payload of POST /api/admin/reset-and-seed.
type ResetAndSeedResponse struct {
	Reset *seed.ResetResult `json:"reset"`
	Seed  *seed.Result      `json:"seed"`
}
