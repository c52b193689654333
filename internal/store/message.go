package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
)

// MessageStore defines the interface for message data persistence.
type MessageStore interface {
	// Create saves a new message.
	Create(ctx context.Context, msg *domain.Message) error

	// GetByID retrieves a message without populated references.
	// Returns ErrMessageNotFound if the message does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)

	// ListForUser returns every message the user sent or received, newest
	// first, with task, sender and receiver summaries populated. References
	// to deleted records are left nil.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error)

	// ListConversation returns the messages exchanged between userA and
	// userB about the task in either direction, oldest first, with sender
	// and receiver summaries populated.
	ListConversation(ctx context.Context, taskID, userA, userB uuid.UUID) ([]*domain.Message, error)

	// CountUnread counts the unread messages sent by senderID to receiverID
	// about the task.
	CountUnread(ctx context.Context, taskID, senderID, receiverID uuid.UUID) (int64, error)

	// MarkRead flags a single message as read.
	// Returns ErrMessageNotFound if the message does not exist.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// MarkConversationRead flags every unread message sent by senderID to
	// receiverID about the task as read and reports how many changed.
	MarkConversationRead(ctx context.Context, taskID, senderID, receiverID uuid.UUID) (int64, error)

	// Count returns the total number of messages.
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every message and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
