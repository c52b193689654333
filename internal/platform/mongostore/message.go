package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessageStore implements store.MessageStore.
type MessageStore struct {
	s *Store
}

var _ store.MessageStore = (*MessageStore)(nil)

// Create implements store.MessageStore.Create.
func (m *MessageStore) Create(ctx context.Context, msg *domain.Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return insertOne(ctx, m.s.col(ColMessages), newMessageDoc(msg))
}

// GetByID implements store.MessageStore.GetByID.
func (m *MessageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	doc, err := findOne[messageDoc](ctx, m.s.col(ColMessages), bson.D{{Key: "_id", Value: id.String()}}, store.ErrMessageNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListForUser implements store.MessageStore.ListForUser.
func (m *MessageStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	id := userID.String()
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "sender", Value: id}},
		bson.D{{Key: "receiver", Value: id}},
	}}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return m.listPopulated(ctx, "list for user", filter, opts)
}

// ListConversation implements store.MessageStore.ListConversation.
func (m *MessageStore) ListConversation(
	ctx context.Context,
	taskID, userA, userB uuid.UUID,
) ([]*domain.Message, error) {
	filter := conversationFilter(taskID, userA, userB)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return m.listPopulated(ctx, "list conversation", filter, opts)
}

// CountUnread implements store.MessageStore.CountUnread.
func (m *MessageStore) CountUnread(ctx context.Context, taskID, senderID, receiverID uuid.UUID) (int64, error) {
	return count(ctx, m.s.col(ColMessages), unreadFilter(taskID, senderID, receiverID))
}

// MarkRead implements store.MessageStore.MarkRead.
func (m *MessageStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	return updateFields(ctx, m.s.col(ColMessages), id.String(), bson.D{
		{Key: "isRead", Value: true},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}, store.ErrMessageNotFound)
}

// MarkConversationRead implements store.MessageStore.MarkConversationRead.
func (m *MessageStore) MarkConversationRead(
	ctx context.Context,
	taskID, senderID, receiverID uuid.UUID,
) (int64, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "isRead", Value: true},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	res, err := m.s.col(ColMessages).UpdateMany(ctx, unreadFilter(taskID, senderID, receiverID), update)
	if err != nil {
		return 0, store.NewStoreError("message", "mark read", "update failed", wrapError(err))
	}
	return res.ModifiedCount, nil
}

// Count implements store.MessageStore.Count.
func (m *MessageStore) Count(ctx context.Context) (int64, error) {
	return count(ctx, m.s.col(ColMessages), bson.D{})
}

// DeleteAll implements store.MessageStore.DeleteAll.
func (m *MessageStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, m.s.col(ColMessages))
}

// listPopulated attaches task, sender and receiver summaries. References to
// deleted records are left nil.
func (m *MessageStore) listPopulated(
	ctx context.Context,
	op string,
	filter bson.D,
	opts *options.FindOptionsBuilder,
) ([]*domain.Message, error) {
	docs, err := findMany[messageDoc](ctx, m.s.col(ColMessages), filter, opts)
	if err != nil {
		return nil, store.NewStoreError("message", op, "query failed", err)
	}

	messages := make([]*domain.Message, 0, len(docs))
	userIDs := make(map[uuid.UUID]struct{})
	taskIDs := make(map[uuid.UUID]struct{})
	for _, d := range docs {
		msg := d.toDomain()
		messages = append(messages, msg)
		userIDs[msg.SenderID] = struct{}{}
		userIDs[msg.ReceiverID] = struct{}{}
		taskIDs[msg.TaskID] = struct{}{}
	}

	users, err := (&UserStore{s: m.s}).summaries(ctx, userIDs)
	if err != nil {
		return nil, store.NewStoreError("message", op, "user lookup failed", err)
	}
	tasks, err := (&TaskStore{s: m.s}).byIDs(ctx, taskIDs)
	if err != nil {
		return nil, store.NewStoreError("message", op, "task lookup failed", err)
	}

	for _, msg := range messages {
		msg.Sender = users[msg.SenderID]
		msg.Receiver = users[msg.ReceiverID]
		if task, ok := tasks[msg.TaskID]; ok {
			msg.Task = task.Summary()
		}
	}
	return messages, nil
}

func conversationFilter(taskID, userA, userB uuid.UUID) bson.D {
	a, b := userA.String(), userB.String()
	return bson.D{
		{Key: "task", Value: taskID.String()},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "sender", Value: a}, {Key: "receiver", Value: b}},
			bson.D{{Key: "sender", Value: b}, {Key: "receiver", Value: a}},
		}},
	}
}

func unreadFilter(taskID, senderID, receiverID uuid.UUID) bson.D {
	return bson.D{
		{Key: "task", Value: taskID.String()},
		{Key: "sender", Value: senderID.String()},
		{Key: "receiver", Value: receiverID.String()},
		{Key: "isRead", Value: false},
	}
}
