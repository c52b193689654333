package domain

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a task as bookmarked by a tasker. A pair is unique.
type Favorite struct {
	ID        uuid.UUID `json:"_id"`
	TaskerID  uuid.UUID `json:"taskerId"`
	TaskID    uuid.UUID `json:"taskId"`
	Task      *Task     `json:"task,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewFavorite creates a favorite for the (tasker, task) pair.
func NewFavorite(taskerID, taskID uuid.UUID) (*Favorite, error) {
	if taskerID == uuid.Nil || taskID == uuid.Nil {
		return nil, ErrInvalidID
	}
	now := time.Now().UTC()
	return &Favorite{
		ID:        uuid.New(),
		TaskerID:  taskerID,
		TaskID:    taskID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
