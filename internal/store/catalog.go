package store

import (
	"context"

	"github.com/phrazzld/taskie-api/internal/domain"
)

// CategoryStore defines the interface for job category persistence.
type CategoryStore interface {
	// List returns every category sorted by name.
	List(ctx context.Context) ([]*domain.JobCategory, error)

	// GetByName retrieves a category by its exact name.
	// Returns ErrCategoryNotFound if there is none.
	GetByName(ctx context.Context, name string) (*domain.JobCategory, error)

	// Create saves a new category.
	// Returns ErrCategoryExists if the name is taken.
	Create(ctx context.Context, category *domain.JobCategory) error

	// Count returns the number of categories.
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every category and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// LocationStore defines the interface for province and ward persistence.
type LocationStore interface {
	// List returns every location sorted by province.
	List(ctx context.Context) ([]*domain.Location, error)

	// GetByProvince retrieves a location by its exact province name.
	// Returns ErrLocationNotFound if there is none.
	GetByProvince(ctx context.Context, province string) (*domain.Location, error)

	// Create saves a new location.
	// Returns ErrLocationExists if the province is taken.
	Create(ctx context.Context, location *domain.Location) error

	// Count returns the number of locations.
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every location and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// Stores groups every store a backend provides.
type Stores struct {
	Users      UserStore
	Tasks      TaskStore
	Messages   MessageStore
	Favorites  FavoriteStore
	Categories CategoryStore
	Locations  LocationStore
}
