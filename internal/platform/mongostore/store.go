// Package mongostore implements the store interfaces on MongoDB using
// mongo-go-driver v2. Documents keep the camelCase field names of the
// public JSON representation and use the UUID string form as _id.
// Collection names and indexes are managed in ensureIndexes.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskie-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names
const (
	ColUsers      = "users"
	ColTasks      = "tasks"
	ColMessages   = "messages"
	ColFavorites  = "favorites"
	ColCategories = "jobcategories"
	ColLocations  = "locations"
)

// Index names double as the keys of duplicateErrors.
const (
	idxUsersEmail     = "users_email_key"
	idxUsersPhone     = "users_phone_key"
	idxFavoritesPair  = "favorites_tasker_task_key"
	idxCategoriesName = "jobcategories_name_key"
	idxLocationsName  = "locations_province_key"
)

// Store holds the MongoDB connection shared by every collection store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// NewStore connects to uri, verifies the connection and ensures indexes.
func NewStore(ctx context.Context, uri, dbName string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger.With(slog.String("component", "mongostore")),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		s.logger.Warn("ensure indexes failed", slog.String("error", err.Error()))
	}

	return s, nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Stores returns the collection stores backed by s.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Users:      &UserStore{s: s},
		Tasks:      &TaskStore{s: s},
		Messages:   &MessageStore{s: s},
		Favorites:  &FavoriteStore{s: s},
		Categories: &CategoryStore{s: s},
		Locations:  &LocationStore{s: s},
	}
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		name   string
		unique bool
		sparse bool
	}

	indexes := []idx{
		// users: email and phone are optional but unique when present
		{ColUsers, bson.D{{Key: "email", Value: 1}}, idxUsersEmail, true, true},
		{ColUsers, bson.D{{Key: "phone", Value: 1}}, idxUsersPhone, true, true},
		{ColUsers, bson.D{{Key: "createdAt", Value: -1}}, "", false, false},

		// tasks
		{ColTasks, bson.D{{Key: "requester", Value: 1}}, "", false, false},
		{ColTasks, bson.D{{Key: "status", Value: 1}}, "", false, false},
		{ColTasks, bson.D{{Key: "createdAt", Value: -1}}, "", false, false},

		// messages
		{ColMessages, bson.D{{Key: "sender", Value: 1}, {Key: "createdAt", Value: -1}}, "", false, false},
		{ColMessages, bson.D{{Key: "receiver", Value: 1}, {Key: "createdAt", Value: -1}}, "", false, false},
		{ColMessages, bson.D{
			{Key: "task", Value: 1}, {Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "isRead", Value: 1},
		}, "", false, false},

		// favorites
		{ColFavorites, bson.D{{Key: "tasker", Value: 1}, {Key: "task", Value: 1}}, idxFavoritesPair, true, false},

		// reference data
		{ColCategories, bson.D{{Key: "name", Value: 1}}, idxCategoriesName, true, false},
		{ColLocations, bson.D{{Key: "province", Value: 1}}, idxLocationsName, true, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		opts := options.Index()
		if i.name != "" {
			opts.SetName(i.name)
		}
		if i.unique {
			opts.SetUnique(true)
		}
		if i.sparse {
			opts.SetSparse(true)
		}
		model.Options = opts
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	return nil
}

// DropDatabase removes every collection. Used by tests.
func (s *Store) DropDatabase(ctx context.Context) error {
	return s.db.Drop(ctx)
}
