package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/api/middleware"
	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
)

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// getUserFromContext returns the authenticated user placed in the context by
// the authentication middleware.
func getUserFromContext(r *http.Request) (*domain.User, bool) {
	return middleware.GetUser(r)
}

// getPathUUID parses the named chi URL parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "Invalid ID")
	}
	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "Invalid ID")
	}
	return id, nil
}

// handleUserAndPathUUID extracts the authenticated user and a UUID path
// parameter, writing an error response when either is missing.
func handleUserAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (*domain.User, uuid.UUID, bool) {
	log = logger.FromContextOrDefault(r.Context(), log)

	user, ok := getUserFromContext(r)
	if !ok {
		log.Warn("user not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authorized, no token provided")
		return nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return nil, uuid.Nil, false
	}

	return user, pathID, true
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := getUserFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authorized, no token provided")
		return nil, false
	}
	return user, true
}

// parseDate accepts "2006-01-02" and RFC 3339 timestamps. An empty string
// yields the zero time.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseMultipart limits the request body to maxBytes and parses it as a
// multipart form.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	return r.ParseMultipartForm(multipartMemory)
}

// formFile returns the first file of field, if any.
func formFile(r *http.Request, field string) (*multipart.FileHeader, bool) {
	if r.MultipartForm == nil {
		return nil, false
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, false
	}
	return files[0], true
}

// formFiles returns every file of field.
func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// isBodyTooLarge reports whether err came from a body over the size limit.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// parseOptionalUUID parses a UUID sent in a request body. An empty value
// yields uuid.Nil so that the service reports the missing field.
func parseOptionalUUID(field, value string) (uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, "Invalid ID")
	}
	return id, nil
}
