// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = &ValidationError{Field: "email", Message: "Please enter a valid email"}

	// ErrInvalidPhone is returned when a phone number is not 10-11 digits.
	ErrInvalidPhone = &ValidationError{
		Field:   "phone",
		Message: "Please enter a valid phone number (10-11 digits)",
	}

	// ErrPasswordTooShort is returned when a password has fewer than MinPasswordLength characters.
	ErrPasswordTooShort = &ValidationError{
		Field:   "password",
		Message: "Password must be at least 6 characters",
	}

	// ErrMissingContact is returned when a user has neither email nor phone.
	ErrMissingContact = &ValidationError{
		Field:   "email",
		Message: "Please provide either email or phone number",
	}

	// ErrForbidden is returned when the acting user may not perform an operation,
	// either because of their role or because they do not own the entity.
	ErrForbidden = errors.New("operation not permitted")
)

// ValidationError describes a single invalid field in a user-presentable way.
// It unwraps to ErrValidation so callers can match on the category.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
