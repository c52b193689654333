package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TaskStore implements store.TaskStore.
type TaskStore struct {
	s *Store
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create.
func (t *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return insertOne(ctx, t.s.col(ColTasks), newTaskDoc(task))
}

// GetByID implements store.TaskStore.GetByID.
func (t *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	doc, err := findOne[taskDoc](ctx, t.s.col(ColTasks), bson.D{{Key: "_id", Value: id.String()}}, store.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	tasks, err := t.populate(ctx, []*taskDoc{doc})
	if err != nil {
		return nil, err
	}
	return tasks[0], nil
}

// List implements store.TaskStore.List.
func (t *TaskStore) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	docs, err := findMany[taskDoc](ctx, t.s.col(ColTasks), taskFilter(filter), opts)
	if err != nil {
		return nil, store.NewStoreError("task", "list", "query failed", err)
	}
	return t.populate(ctx, docs)
}

// Update implements store.TaskStore.Update.
func (t *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return updateFields(ctx, t.s.col(ColTasks), task.ID.String(), bson.D{
		{Key: "description", Value: task.Description},
		{Key: "price", Value: task.Price},
		{Key: "status", Value: string(task.Status)},
		{Key: "paymentProof", Value: task.PaymentProofURL},
		{Key: "updatedAt", Value: task.UpdatedAt},
	}, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (t *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByFilter(ctx, t.s.col(ColTasks), bson.D{{Key: "_id", Value: id.String()}}, store.ErrTaskNotFound)
}

// Count implements store.TaskStore.Count.
func (t *TaskStore) Count(ctx context.Context, filter store.TaskCountFilter) (int64, error) {
	return count(ctx, t.s.col(ColTasks), taskCountFilter(filter))
}

// DeleteAll implements store.TaskStore.DeleteAll.
func (t *TaskStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, t.s.col(ColTasks))
}

// populate converts docs and attaches requester summaries.
func (t *TaskStore) populate(ctx context.Context, docs []*taskDoc) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(docs))
	ids := make(map[uuid.UUID]struct{})
	for _, d := range docs {
		task := d.toDomain()
		tasks = append(tasks, task)
		ids[task.RequesterID] = struct{}{}
	}

	users := &UserStore{s: t.s}
	summaries, err := users.summaries(ctx, ids)
	if err != nil {
		return nil, store.NewStoreError("task", "populate", "requester lookup failed", err)
	}
	for _, task := range tasks {
		task.Requester = summaries[task.RequesterID]
	}
	return tasks, nil
}

// byIDs loads tasks keyed by id. Missing tasks are absent from the map.
func (t *TaskStore) byIDs(ctx context.Context, ids map[uuid.UUID]struct{}) (map[uuid.UUID]*domain.Task, error) {
	out := make(map[uuid.UUID]*domain.Task, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: idStrings(ids)}}}}
	docs, err := findMany[taskDoc](ctx, t.s.col(ColTasks), filter)
	if err != nil {
		return nil, err
	}
	tasks, err := t.populate(ctx, docs)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		out[task.ID] = task
	}
	return out, nil
}

// taskFilter translates a TaskFilter into a query document.
func taskFilter(f domain.TaskFilter) bson.D {
	filter := bson.D{}
	if f.RequesterID != uuid.Nil {
		filter = append(filter, bson.E{Key: "requester", Value: f.RequesterID.String()})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.Keyword != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(f.Keyword), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
		}})
	}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	if f.Province != "" {
		filter = append(filter, bson.E{Key: "location.province", Value: f.Province})
	}
	if f.Ward != "" {
		filter = append(filter, bson.E{Key: "location.ward", Value: f.Ward})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.D{}
		if f.MinPrice != nil {
			price = append(price, bson.E{Key: "$gte", Value: *f.MinPrice})
		}
		if f.MaxPrice != nil {
			price = append(price, bson.E{Key: "$lte", Value: *f.MaxPrice})
		}
		filter = append(filter, bson.E{Key: "price", Value: price})
	}
	return filter
}

func taskCountFilter(f store.TaskCountFilter) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	if !f.CreatedSince.IsZero() {
		filter = append(filter, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: f.CreatedSince}}})
	}
	return filter
}
