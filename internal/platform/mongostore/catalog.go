package mongostore

import (
	"context"

	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CategoryStore implements store.CategoryStore.
type CategoryStore struct {
	s *Store
}

var _ store.CategoryStore = (*CategoryStore)(nil)

// List implements store.CategoryStore.List.
func (c *CategoryStore) List(ctx context.Context) ([]*domain.JobCategory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	docs, err := findMany[categoryDoc](ctx, c.s.col(ColCategories), bson.D{}, opts)
	if err != nil {
		return nil, store.NewStoreError("category", "list", "query failed", err)
	}
	out := make([]*domain.JobCategory, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// GetByName implements store.CategoryStore.GetByName.
func (c *CategoryStore) GetByName(ctx context.Context, name string) (*domain.JobCategory, error) {
	doc, err := findOne[categoryDoc](ctx, c.s.col(ColCategories), bson.D{{Key: "name", Value: name}}, store.ErrCategoryNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Create implements store.CategoryStore.Create.
func (c *CategoryStore) Create(ctx context.Context, category *domain.JobCategory) error {
	return insertOne(ctx, c.s.col(ColCategories), &categoryDoc{
		ID:          category.ID.String(),
		Name:        category.Name,
		PostingFee:  category.PostingFee,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	})
}

// Count implements store.CategoryStore.Count.
func (c *CategoryStore) Count(ctx context.Context) (int64, error) {
	return count(ctx, c.s.col(ColCategories), bson.D{})
}

// DeleteAll implements store.CategoryStore.DeleteAll.
func (c *CategoryStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, c.s.col(ColCategories))
}

// LocationStore implements store.LocationStore.
type LocationStore struct {
	s *Store
}

var _ store.LocationStore = (*LocationStore)(nil)

// List implements store.LocationStore.List.
func (l *LocationStore) List(ctx context.Context) ([]*domain.Location, error) {
	opts := options.Find().SetSort(bson.D{{Key: "province", Value: 1}})
	docs, err := findMany[locationDoc](ctx, l.s.col(ColLocations), bson.D{}, opts)
	if err != nil {
		return nil, store.NewStoreError("location", "list", "query failed", err)
	}
	out := make([]*domain.Location, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// GetByProvince implements store.LocationStore.GetByProvince.
func (l *LocationStore) GetByProvince(ctx context.Context, province string) (*domain.Location, error) {
	doc, err := findOne[locationDoc](ctx, l.s.col(ColLocations), bson.D{{Key: "province", Value: province}}, store.ErrLocationNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Create implements store.LocationStore.Create.
func (l *LocationStore) Create(ctx context.Context, location *domain.Location) error {
	wards := location.Wards
	if wards == nil {
		wards = []string{}
	}
	return insertOne(ctx, l.s.col(ColLocations), &locationDoc{
		ID:        location.ID.String(),
		Province:  location.Province,
		Wards:     wards,
		CreatedAt: location.CreatedAt,
		UpdatedAt: location.UpdatedAt,
	})
}

// Count implements store.LocationStore.Count.
func (l *LocationStore) Count(ctx context.Context) (int64, error) {
	return count(ctx, l.s.col(ColLocations), bson.D{})
}

// DeleteAll implements store.LocationStore.DeleteAll.
func (l *LocationStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, l.s.col(ColLocations))
}
