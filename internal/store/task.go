package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
)

// TaskCountFilter narrows a task count. Zero fields match everything.
type TaskCountFilter struct {
	Status       domain.TaskStatus
	CreatedSince time.Time
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its requester summary populated.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the tasks matching filter, newest first, with requester
	// summaries populated. A requester that no longer exists leaves Requester nil.
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)

	// Update persists the mutable fields of a task: description, price,
	// status, payment proof and UpdatedAt.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Messages and favorites referencing it are kept.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of tasks matching the filter.
	Count(ctx context.Context, filter TaskCountFilter) (int64, error)

	// DeleteAll removes every task and reports how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
}
