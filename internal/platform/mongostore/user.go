package mongostore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UserStore implements store.UserStore.
type UserStore struct {
	s *Store
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (u *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: hashed password is required", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return insertOne(ctx, u.s.col(ColUsers), newUserDoc(user))
}

// GetByID implements store.UserStore.GetByID.
func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return u.getBy(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

// GetByEmail implements store.UserStore.GetByEmail.
func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.getBy(ctx, bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}})
}

// GetByPhone implements store.UserStore.GetByPhone.
func (u *UserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return u.getBy(ctx, bson.D{{Key: "phone", Value: phone}})
}

func (u *UserStore) getBy(ctx context.Context, filter bson.D) (*domain.User, error) {
	doc, err := findOne[userDoc](ctx, u.s.col(ColUsers), filter, store.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Update implements store.UserStore.Update. The stored document is
// replaced so that cleared contacts are removed instead of stored as empty
// strings.
func (u *UserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return replaceByID(ctx, u.s.col(ColUsers), user.ID.String(), newUserDoc(user), store.ErrUserNotFound)
}

// List implements store.UserStore.List.
func (u *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	docs, err := findMany[userDoc](ctx, u.s.col(ColUsers), bson.D{}, opts)
	if err != nil {
		return nil, store.NewStoreError("user", "list", "query failed", err)
	}
	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

// Count implements store.UserStore.Count.
func (u *UserStore) Count(ctx context.Context, filter store.UserCountFilter) (int64, error) {
	f := bson.D{}
	if filter.Role != domain.RoleNone {
		f = append(f, bson.E{Key: "currentRole", Value: string(filter.Role)})
	}
	if !filter.CreatedSince.IsZero() {
		f = append(f, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: filter.CreatedSince}}})
	}
	return count(ctx, u.s.col(ColUsers), f)
}

// DeleteAll implements store.UserStore.DeleteAll.
func (u *UserStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, u.s.col(ColUsers))
}

// summaries loads the public summaries of the given users keyed by id.
// Missing users are absent from the map.
func (u *UserStore) summaries(ctx context.Context, ids map[uuid.UUID]struct{}) (map[uuid.UUID]*domain.UserSummary, error) {
	out := make(map[uuid.UUID]*domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: idStrings(ids)}}}}
	docs, err := findMany[userDoc](ctx, u.s.col(ColUsers), filter)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		user := d.toDomain()
		out[user.ID] = user.Summary()
	}
	return out, nil
}
