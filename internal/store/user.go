package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
)

// UserCountFilter narrows a user count. Zero fields match everything.
type UserCountFilter struct {
	Role         domain.Role
	CreatedSince time.Time
}

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// The caller must set HashedPassword; plaintext passwords are never stored.
	// Returns ErrEmailExists or ErrPhoneExists if the contact is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByPhone retrieves a user by their phone number.
	// Returns ErrUserNotFound if the user does not exist.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// Update replaces the mutable fields of an existing user, including
	// HashedPassword, CurrentRole and the profile image URLs.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// List returns every user, newest first.
	List(ctx context.Context) ([]*domain.User, error)

	// Count returns the number of users matching the filter.
	Count(ctx context.Context, filter UserCountFilter) (int64, error)

	// DeleteAll removes every user and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
