package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a chat line between two users about one task.
// Only IsRead changes after creation.
type Message struct {
	ID         uuid.UUID    `json:"_id"`
	TaskID     uuid.UUID    `json:"taskId"`
	SenderID   uuid.UUID    `json:"senderId"`
	ReceiverID uuid.UUID    `json:"receiverId"`
	Content    string       `json:"content"`
	IsRead     bool         `json:"isRead"`
	Task       *TaskSummary `json:"task,omitempty"`
	Sender     *UserSummary `json:"sender,omitempty"`
	Receiver   *UserSummary `json:"receiver,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// NewMessage creates an unread message.
func NewMessage(taskID, senderID, receiverID uuid.UUID, content string) (*Message, error) {
	now := time.Now().UTC()
	msg := &Message{
		ID:         uuid.New(),
		TaskID:     taskID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    strings.TrimSpace(content),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

// Validate checks if the Message has valid data.
func (m *Message) Validate() error {
	if m.ID == uuid.Nil || m.TaskID == uuid.Nil || m.SenderID == uuid.Nil || m.ReceiverID == uuid.Nil {
		return ErrInvalidID
	}
	if m.SenderID == m.ReceiverID {
		return NewValidationError("receiverId", "You cannot send a message to yourself")
	}
	if m.Content == "" {
		return NewValidationError("content", "Message content is required")
	}
	return nil
}

// CounterpartOf returns the other party of the message from userID's point of view.
func (m *Message) CounterpartOf(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// CounterpartSummaryOf returns the populated summary of the other party, if any.
func (m *Message) CounterpartSummaryOf(userID uuid.UUID) *UserSummary {
	if m.SenderID == userID {
		return m.Receiver
	}
	return m.Sender
}
