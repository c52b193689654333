package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/redact"
	"github.com/phrazzld/taskie-api/internal/service/auth"
	"github.com/phrazzld/taskie-api/internal/store"
)

// Client messages of the authentication gate.
const (
	msgNoToken      = "Not authorized, no token provided"
	msgTokenFailed  = "Not authorized, token failed"
	msgUserNotFound = "User not found"
)

// AuthMiddleware authenticates requests with a bearer JWT and loads the
// user it was issued for.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      store.UserStore
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, users store.UserStore, log *slog.Logger) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		logger:     log.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the bearer token, loads its user and stores the
// user in the request context. Every failure is a 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer") {
			shared.RespondWithError(w, r, http.StatusUnauthorized, msgNoToken)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, msgNoToken)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, msgTokenFailed, err)
			return
		}

		user, err := m.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, msgUserNotFound)
				return
			}
			logger.FromContextOrDefault(r.Context(), m.logger).Error("failed to load authenticated user",
				slog.String("user_id", claims.UserID.String()),
				slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusUnauthorized, msgTokenFailed)
			return
		}

		ctx := shared.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects users whose current role is not role with a 403
// carrying message. It must run after Authenticate.
func RequireRole(role domain.Role, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := shared.UserFromContext(r.Context())
			if !ok || !user.HasRole(role) {
				shared.RespondWithError(w, r, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Role gates used by the router.
var (
	RequireAdmin     = RequireRole(domain.RoleAdmin, "Not authorized as admin")
	RequireRequester = RequireRole(domain.RoleRequester, "Not authorized, requester role required")
	RequireTasker    = RequireRole(domain.RoleTasker, "Not authorized, tasker role required")
)

// GetUser returns the authenticated user of the request.
func GetUser(r *http.Request) (*domain.User, bool) {
	return shared.UserFromContext(r.Context())
}

// GetUserID returns the ID of the authenticated user of the request.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}
