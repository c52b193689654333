package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/uploads"
	"github.com/phrazzld/taskie-api/internal/service"
	"github.com/phrazzld/taskie-api/internal/service/auth"
	"github.com/phrazzld/taskie-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. Anything
// not recognized is a 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Duplicates are reported as bad requests, not conflicts.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		store.IsDuplicateError(err),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, uploads.ErrFileTooLarge),
		errors.Is(err, uploads.ErrUnsupportedType),
		errors.Is(err, uploads.ErrTooManyFiles):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// notFoundMessages names the missing entity for each store error.
var notFoundMessages = []struct {
	err     error
	message string
}{
	{store.ErrTaskNotFound, "Task not found"},
	{store.ErrMessageNotFound, "Message not found"},
	{store.ErrFavoriteNotFound, "Favorite not found"},
	{store.ErrUserNotFound, "User not found"},
	{store.ErrCategoryNotFound, "Category not found"},
	{store.ErrLocationNotFound, "Location not found"},
}

// GetSafeErrorMessage returns a message that can be shown to the client.
// Service and validation errors carry their own presentable message; other
// errors get a generic one, with fallback used for server errors.
func GetSafeErrorMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = "An unexpected error occurred"
	}
	if err == nil {
		return fallback
	}

	var serviceErr *service.Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Not authorized, token failed"

	case errors.Is(err, auth.ErrMissingToken):
		return "Not authorized, no token provided"

	case errors.Is(err, domain.ErrForbidden):
		return "Not authorized"

	case store.IsNotFoundError(err):
		for _, nf := range notFoundMessages {
			if errors.Is(err, nf.err) {
				return nf.message
			}
		}
		return "Resource not found"

	case store.IsDuplicateError(err):
		return "Resource already exists"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, uploads.ErrFileTooLarge),
		errors.Is(err, uploads.ErrUnsupportedType),
		errors.Is(err, uploads.ErrTooManyFiles):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	default:
		return fallback
	}
}

// HandleAPIError responds with the status and safe message for err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err, fallback), err)
}

// SanitizeValidationError turns validator errors into a short message that
// names the field without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", lowerFirst(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid ID"
	default:
		return "validation failed"
	}
}
