package mongostore

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// duplicateErrors maps unique index names to the store error they signal.
var duplicateErrors = map[string]error{
	idxUsersEmail:     store.ErrEmailExists,
	idxUsersPhone:     store.ErrPhoneExists,
	idxFavoritesPair:  store.ErrFavoriteExists,
	idxCategoriesName: store.ErrCategoryExists,
	idxLocationsName:  store.ErrLocationExists,
}

// wrapError converts MongoDB errors to store errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		for index, specific := range duplicateErrors {
			if strings.Contains(msg, index) {
				return specific
			}
		}
		return store.ErrDuplicate
	}
	return err
}

// findOne decodes a single document, returning notFound when none matches.
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D, notFound error) (*T, error) {
	var result T
	err := col.FindOne(ctx, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, wrapError(err)
	}
	return &result, nil
}

// findMany decodes every matching document.
func findMany[T any](
	ctx context.Context,
	col *mongo.Collection,
	filter bson.D,
	opts ...options.Lister[options.FindOptions],
) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	results := []*T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, &item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func insertOne(ctx context.Context, col *mongo.Collection, doc any) error {
	_, err := col.InsertOne(ctx, doc)
	return wrapError(err)
}

func deleteByFilter(ctx context.Context, col *mongo.Collection, filter bson.D, notFound error) error {
	res, err := col.DeleteOne(ctx, filter)
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

func updateFields(ctx context.Context, col *mongo.Collection, id string, update bson.D, notFound error) error {
	res, err := col.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: update}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

func replaceByID(ctx context.Context, col *mongo.Collection, id string, doc any, notFound error) error {
	res, err := col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

func deleteAll(ctx context.Context, col *mongo.Collection) (int64, error) {
	res, err := col.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, store.NewStoreError(col.Name(), "delete all", "delete failed", wrapError(err))
	}
	return res.DeletedCount, nil
}

func count(ctx context.Context, col *mongo.Collection, filter bson.D) (int64, error) {
	n, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, store.NewStoreError(col.Name(), "count", "count failed", wrapError(err))
	}
	return n, nil
}

// parseID converts a stored _id back to a UUID. Documents are written only
// by this package, so a malformed id maps to uuid.Nil.
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// idStrings converts a set of UUIDs into the string form used as _id.
func idStrings(ids map[uuid.UUID]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id.String())
	}
	return out
}
