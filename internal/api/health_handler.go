package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// healthTimeout bounds each health probe.
const healthTimeout = 2 * time.Second

// HealthHandler serves the root and health endpoints.
type HealthHandler struct {
	version string
	checks  map[string]Pinger
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler running the given named checks.
func NewHealthHandler(version string, checks map[string]Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		version: version,
		checks:  checks,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message       string `json:"message"`
	Version       string `json:"version"`
	Status        string `json:"status"`
	Documentation string `json:"documentation"`
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, RootResponse{
		Message:       "Taskie API is running!",
		Version:       h.version,
		Status:        "running",
		Documentation: "/api-docs",
	})
}

// Health handles GET /health. It answers "OK" when every check passes and
// 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Error("health check failed",
				slog.String("check", name),
				slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		h.logger.Error("failed to write health check response", slog.String("error", err.Error()))
	}
}
