package service

import (
	"context"
	"errors"

	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
)

// CatalogService exposes the reference data: job categories and locations.
type CatalogService interface {
	Categories(ctx context.Context) ([]*domain.JobCategory, error)
	Locations(ctx context.Context) ([]*domain.Location, error)
}

type catalogServiceImpl struct {
	categories store.CategoryStore
	locations  store.LocationStore
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(categories store.CategoryStore, locations store.LocationStore) (CatalogService, error) {
	if categories == nil || locations == nil {
		return nil, errors.New("category and location stores are required")
	}
	return &catalogServiceImpl{categories: categories, locations: locations}, nil
}

func (s *catalogServiceImpl) Categories(ctx context.Context) ([]*domain.JobCategory, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, NewServiceError("catalog", "categories", err)
	}
	return cats, nil
}

func (s *catalogServiceImpl) Locations(ctx context.Context) ([]*domain.Location, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, NewServiceError("catalog", "locations", err)
	}
	return locs, nil
}
