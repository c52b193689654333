package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversationUser is the counterpart shown in a conversation list entry.
type ConversationUser struct {
	ID        uuid.UUID `json:"_id"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

// Conversation summarizes the messages exchanged between two users about one task.
type Conversation struct {
	TaskID          uuid.UUID         `json:"taskId"`
	TaskTitle       string            `json:"taskTitle"`
	TaskStatus      TaskStatus        `json:"taskStatus"`
	OtherUser       *ConversationUser `json:"otherUser"`
	LastMessage     string            `json:"lastMessage"`
	LastMessageTime time.Time         `json:"lastMessageTime"`
	UnreadCount     int64             `json:"unreadCount"`
}

// ConversationKey identifies a conversation by task and counterpart.
func ConversationKey(taskID, counterpartID uuid.UUID) string {
	return taskID.String() + "-" + counterpartID.String()
}

// ConversationDetail is the full message history of one conversation.
type ConversationDetail struct {
	Messages []*Message `json:"messages"`
	Task     *Task      `json:"task"`
}
