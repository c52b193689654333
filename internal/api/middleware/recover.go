package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
)

// NewRecoverer turns panics into a 500 response. The panic value is only
// included in the response when exposeDetails is set.
func NewRecoverer(exposeDetails bool, base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let net/http abort the connection.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				detail := fmt.Sprint(rec)
				logger.FromContextOrDefault(r.Context(), base).Error("panic recovered",
					slog.String("panic", detail),
					slog.String("stack", string(debug.Stack())))

				var opts []shared.ResponseOption
				if exposeDetails {
					opts = append(opts, shared.WithErrorDetail(detail))
				}
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Something went wrong!", fmt.Errorf("panic: %s", detail), opts...)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
