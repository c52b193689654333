package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinTaskImages is the minimum number of images a task must be posted with.
const MinTaskImages = 2

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Valid task statuses. A task only ever moves from pending to completed.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// CanTransitionTo reports whether a task in status s may move to next.
// Setting the current status again is allowed and is a no-op.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	return s == TaskStatusPending && next == TaskStatusCompleted
}

var (
	// ErrInvalidTaskStatus is returned for a status outside the known set.
	ErrInvalidTaskStatus = &ValidationError{Field: "status", Message: "Invalid status value"}

	// ErrTaskCompleted is returned when a completed task is edited.
	ErrTaskCompleted = &ValidationError{Field: "status", Message: "Cannot edit a completed task"}

	// ErrTaskNotPending is returned when a non-pending task is completed.
	ErrTaskNotPending = &ValidationError{
		Field:   "status",
		Message: "Only pending tasks can be marked as completed",
	}

	// ErrInvalidPrice is returned for a missing, non-numeric or negative price.
	ErrInvalidPrice = &ValidationError{Field: "price", Message: "Please provide a valid price"}

	// ErrNotEnoughImages is returned when a task has fewer than MinTaskImages images.
	ErrNotEnoughImages = &ValidationError{
		Field:   "images",
		Message: "Please upload at least 2 images of the task",
	}

	// ErrIncompleteLocation is returned when province or ward is missing.
	ErrIncompleteLocation = &ValidationError{
		Field:   "location",
		Message: "Please provide both province and ward",
	}
)

// TaskLocation is where the task takes place.
type TaskLocation struct {
	Province string `json:"province"`
	Ward     string `json:"ward"`
}

// Task is a job posted by a requester.
type Task struct {
	ID              uuid.UUID    `json:"_id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Category        string       `json:"category"`
	Images          []string     `json:"images"`
	Location        TaskLocation `json:"location"`
	Price           float64      `json:"price"`
	PostingFee      float64      `json:"postingFee"`
	Deadline        time.Time    `json:"deadline"`
	PaymentProofURL string       `json:"paymentProofUrl,omitempty"`
	Status          TaskStatus   `json:"status"`
	RequesterID     uuid.UUID    `json:"requesterId"`
	Requester       *UserSummary `json:"requester,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// TaskSummary is the projection of a task embedded in messages and conversations.
type TaskSummary struct {
	ID          uuid.UUID  `json:"_id"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	RequesterID uuid.UUID  `json:"requesterId"`
}

// NewTask creates a pending task owned by requesterID.
func NewTask(
	requesterID uuid.UUID,
	title, description, category string,
	images []string,
	location TaskLocation,
	price, postingFee float64,
	deadline time.Time,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    category,
		Images:      images,
		Location:    location,
		Price:       price,
		PostingFee:  postingFee,
		Deadline:    deadline,
		Status:      TaskStatusPending,
		RequesterID: requesterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil || t.RequesterID == uuid.Nil {
		return ErrInvalidID
	}
	if t.Title == "" || t.Description == "" || t.Category == "" || t.Deadline.IsZero() {
		return NewValidationError("task", "Please provide all required fields")
	}
	if len(t.Images) < MinTaskImages {
		return ErrNotEnoughImages
	}
	if t.Location.Province == "" || t.Location.Ward == "" {
		return ErrIncompleteLocation
	}
	if !ValidPrice(t.Price) {
		return ErrInvalidPrice
	}
	if t.PostingFee < 0 {
		return NewValidationError("postingFee", "Posting fee must be a positive number")
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	return nil
}

// ValidPrice reports whether p is a finite, non-negative amount.
func ValidPrice(p float64) bool {
	return p >= 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// IsOwnedBy reports whether userID posted the task.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.RequesterID == userID
}

// Summary returns the embedded projection of the task.
func (t *Task) Summary() *TaskSummary {
	return &TaskSummary{
		ID:          t.ID,
		Title:       t.Title,
		Status:      t.Status,
		RequesterID: t.RequesterID,
	}
}

// TaskFilter narrows task listings. Zero values mean "no constraint".
type TaskFilter struct {
	RequesterID uuid.UUID
	Status      TaskStatus
	Keyword     string
	Category    string
	Province    string
	Ward        string
	MinPrice    *float64
	MaxPrice    *float64
}

// Matches reports whether t satisfies every constraint of f.
func (f TaskFilter) Matches(t *Task) bool {
	if f.RequesterID != uuid.Nil && t.RequesterID != f.RequesterID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(t.Title), kw) &&
			!strings.Contains(strings.ToLower(t.Description), kw) {
			return false
		}
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Province != "" && t.Location.Province != f.Province {
		return false
	}
	if f.Ward != "" && t.Location.Ward != f.Ward {
		return false
	}
	if f.MinPrice != nil && t.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && t.Price > *f.MaxPrice {
		return false
	}
	return true
}
