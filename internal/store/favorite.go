package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
)

// FavoriteStore defines the interface for favorite data persistence.
type FavoriteStore interface {
	// Create saves a new favorite.
	// Returns ErrFavoriteExists if the tasker already favorited the task.
	Create(ctx context.Context, fav *domain.Favorite) error

	// Exists reports whether the tasker has favorited the task.
	Exists(ctx context.Context, taskerID, taskID uuid.UUID) (bool, error)

	// ListByTasker returns the tasker's favorites, newest first, each with
	// its task and the task's requester populated. A deleted task leaves Task nil.
	ListByTasker(ctx context.Context, taskerID uuid.UUID) ([]*domain.Favorite, error)

	// Delete removes the (tasker, task) favorite.
	// Returns ErrFavoriteNotFound if there is none.
	Delete(ctx context.Context, taskerID, taskID uuid.UUID) error

	// DeleteAll removes every favorite and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
