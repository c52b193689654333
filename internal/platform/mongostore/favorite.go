package mongostore

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// FavoriteStore implements store.FavoriteStore.
type FavoriteStore struct {
	s *Store
}

var _ store.FavoriteStore = (*FavoriteStore)(nil)

// Create implements store.FavoriteStore.Create.
func (f *FavoriteStore) Create(ctx context.Context, fav *domain.Favorite) error {
	return insertOne(ctx, f.s.col(ColFavorites), newFavoriteDoc(fav))
}

// Exists implements store.FavoriteStore.Exists.
func (f *FavoriteStore) Exists(ctx context.Context, taskerID, taskID uuid.UUID) (bool, error) {
	n, err := f.s.col(ColFavorites).CountDocuments(ctx, pairFilter(taskerID, taskID), options.Count().SetLimit(1))
	if err != nil {
		return false, wrapError(err)
	}
	return n > 0, nil
}

// ListByTasker implements store.FavoriteStore.ListByTasker.
func (f *FavoriteStore) ListByTasker(ctx context.Context, taskerID uuid.UUID) ([]*domain.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	docs, err := findMany[favoriteDoc](ctx, f.s.col(ColFavorites), bson.D{{Key: "tasker", Value: taskerID.String()}}, opts)
	if err != nil {
		return nil, store.NewStoreError("favorite", "list", "query failed", err)
	}

	favorites := make([]*domain.Favorite, 0, len(docs))
	taskIDs := make(map[uuid.UUID]struct{})
	for _, d := range docs {
		fav := d.toDomain()
		favorites = append(favorites, fav)
		taskIDs[fav.TaskID] = struct{}{}
	}

	tasks, err := (&TaskStore{s: f.s}).byIDs(ctx, taskIDs)
	if err != nil {
		return nil, store.NewStoreError("favorite", "list", "task lookup failed", err)
	}
	for _, fav := range favorites {
		fav.Task = tasks[fav.TaskID]
	}
	return favorites, nil
}

// Delete implements store.FavoriteStore.Delete.
func (f *FavoriteStore) Delete(ctx context.Context, taskerID, taskID uuid.UUID) error {
	return deleteByFilter(ctx, f.s.col(ColFavorites), pairFilter(taskerID, taskID), store.ErrFavoriteNotFound)
}

// DeleteAll implements store.FavoriteStore.DeleteAll.
func (f *FavoriteStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, f.s.col(ColFavorites))
}

func pairFilter(taskerID, taskID uuid.UUID) bson.D {
	return bson.D{
		{Key: "tasker", Value: taskerID.String()},
		{Key: "task", Value: taskID.String()},
	}
}
