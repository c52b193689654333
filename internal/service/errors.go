package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
)

// ErrUnauthenticated is the category of failures where the caller's
// credentials could not be verified.
var ErrUnauthenticated = errors.New("unauthenticated")

// Error is an expected service failure carrying a message that is safe to
// show to the client. Kind places it in a category (domain.ErrValidation,
// domain.ErrForbidden, store.ErrNotFound, store.ErrDuplicate or
// ErrUnauthenticated) that the API layer maps to a status code.
type Error struct {
	Kind    error
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the category of the error.
func (e *Error) Unwrap() error {
	return e.Kind
}

func invalid(message string) error {
	return &Error{Kind: domain.ErrValidation, Message: message}
}

func forbidden(message string) error {
	return &Error{Kind: domain.ErrForbidden, Message: message}
}

// Sentinel service errors. Callers match them with errors.Is.
var (
	ErrInvalidCredentials = &Error{
		Kind:    ErrUnauthenticated,
		Message: "Email/phone number or password is incorrect",
	}
	ErrIncorrectPassword = &Error{Kind: ErrUnauthenticated, Message: "Current password is incorrect"}
	ErrUserExists        = &Error{
		Kind:    store.ErrDuplicate,
		Message: "User already exists with this email or phone number",
	}
	ErrInvalidRole      = &Error{Kind: domain.ErrValidation, Message: "Please provide a valid role (requester or tasker)"}
	ErrInvalidCategory  = &Error{Kind: domain.ErrValidation, Message: "Invalid job category"}
	ErrReceiverNotFound = &Error{Kind: store.ErrNotFound, Message: "Receiver not found"}
	ErrAlreadyFavorited = &Error{Kind: store.ErrDuplicate, Message: "Task already in favorites"}
)

// ServiceError wraps an unexpected failure with the service and operation
// that produced it.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}
