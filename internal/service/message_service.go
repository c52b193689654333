package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
)

// SendMessageParams holds the fields of a new message.
type SendMessageParams struct {
	TaskID     uuid.UUID
	ReceiverID uuid.UUID
	Content    string
}

// MessageService provides messaging between users about tasks.
type MessageService interface {
	// Send stores a message from senderID and returns it with task, sender
	// and receiver summaries populated.
	Send(ctx context.Context, senderID uuid.UUID, params SendMessageParams) (*domain.Message, error)

	// GetConversations groups the user's messages by (task, counterpart).
	// Each conversation carries its most recent message and the number of
	// unread messages the counterpart sent the user. Conversations appear in
	// order of their most recent message, newest first. Messages about
	// deleted tasks are skipped.
	GetConversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)

	// GetConversation returns the messages between userID and otherUserID
	// about the task, oldest first, and marks the ones otherUserID sent as
	// read. Task is nil when the task no longer exists.
	GetConversation(ctx context.Context, userID, taskID, otherUserID uuid.UUID) (*domain.ConversationDetail, error)

	// MarkRead flags a message as read. Only its receiver may do so.
	MarkRead(ctx context.Context, userID, messageID uuid.UUID) error
}

type messageServiceImpl struct {
	messages store.MessageStore
	tasks    store.TaskStore
	users    store.UserStore
	logger   *slog.Logger
}

// NewMessageService creates a MessageService.
func NewMessageService(
	messages store.MessageStore,
	tasks store.TaskStore,
	users store.UserStore,
	log *slog.Logger,
) (MessageService, error) {
	if messages == nil || tasks == nil || users == nil {
		return nil, errors.New("message, task and user stores are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &messageServiceImpl{
		messages: messages,
		tasks:    tasks,
		users:    users,
		logger:   log.With(slog.String("component", "message_service")),
	}, nil
}

func (s *messageServiceImpl) Send(
	ctx context.Context,
	senderID uuid.UUID,
	p SendMessageParams,
) (*domain.Message, error) {
	if p.TaskID == uuid.Nil || p.ReceiverID == uuid.Nil || strings.TrimSpace(p.Content) == "" {
		return nil, invalid("Please provide taskId, receiverId, and content")
	}

	task, err := s.tasks.GetByID(ctx, p.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	receiver, err := s.users.GetByID(ctx, p.ReceiverID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, NewServiceError("message", "send", err)
	}

	msg, err := domain.NewMessage(p.TaskID, senderID, p.ReceiverID, p.Content)
	if err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, NewServiceError("message", "send", err)
	}

	msg.Task = task.Summary()
	msg.Receiver = receiver.Summary()
	if sender, err := s.users.GetByID(ctx, senderID); err == nil {
		msg.Sender = sender.Summary()
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("message sent",
		slog.String("message_id", msg.ID.String()),
		slog.String("task_id", p.TaskID.String()))
	return msg, nil
}

func (s *messageServiceImpl) GetConversations(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Conversation, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("message", "get_conversations", err)
	}

	// Messages arrive newest first, so the first one seen for a key is the
	// latest of its conversation.
	conversations := []*domain.Conversation{}
	counterparts := []uuid.UUID{}
	seen := make(map[string]bool)
	for _, m := range msgs {
		if m.Task == nil {
			continue
		}
		other := m.CounterpartOf(userID)
		key := domain.ConversationKey(m.TaskID, other)
		if seen[key] {
			continue
		}
		seen[key] = true

		conv := &domain.Conversation{
			TaskID:          m.TaskID,
			TaskTitle:       m.Task.Title,
			TaskStatus:      m.Task.Status,
			LastMessage:     m.Content,
			LastMessageTime: m.CreatedAt,
		}
		if u := m.CounterpartSummaryOf(userID); u != nil {
			conv.OtherUser = &domain.ConversationUser{ID: u.ID, FullName: u.FullName, AvatarURL: u.AvatarURL}
		}
		conversations = append(conversations, conv)
		counterparts = append(counterparts, other)
	}

	for i, conv := range conversations {
		n, err := s.messages.CountUnread(ctx, conv.TaskID, counterparts[i], userID)
		if err != nil {
			return nil, NewServiceError("message", "get_conversations", err)
		}
		conv.UnreadCount = n
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("conversations aggregated",
		slog.String("user_id", userID.String()),
		slog.Int("messages", len(msgs)),
		slog.Int("conversations", len(conversations)))
	return conversations, nil
}

func (s *messageServiceImpl) GetConversation(
	ctx context.Context,
	userID, taskID, otherUserID uuid.UUID,
) (*domain.ConversationDetail, error) {
	msgs, err := s.messages.ListConversation(ctx, taskID, userID, otherUserID)
	if err != nil {
		return nil, NewServiceError("message", "get_conversation", err)
	}

	marked, err := s.messages.MarkConversationRead(ctx, taskID, otherUserID, userID)
	if err != nil {
		return nil, NewServiceError("message", "get_conversation", err)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			return nil, NewServiceError("message", "get_conversation", err)
		}
		task = nil
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("conversation fetched",
		slog.String("task_id", taskID.String()),
		slog.Int("messages", len(msgs)),
		slog.Int64("marked_read", marked))
	return &domain.ConversationDetail{Messages: msgs, Task: task}, nil
}

func (s *messageServiceImpl) MarkRead(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to retrieve message: %w", err)
	}
	if msg.ReceiverID != userID {
		return forbidden("Not authorized to mark this message as read")
	}
	if err := s.messages.MarkRead(ctx, messageID); err != nil {
		return NewServiceError("message", "mark_read", err)
	}
	return nil
}
