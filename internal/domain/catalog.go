package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobCategory is a kind of work a task can be posted under.
// Its posting fee is copied onto each task at creation.
type JobCategory struct {
	ID          uuid.UUID `json:"_id"`
	Name        string    `json:"name"`
	PostingFee  float64   `json:"postingFee"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewJobCategory creates a category.
func NewJobCategory(name string, postingFee float64, description string) (*JobCategory, error) {
	if name == "" {
		return nil, NewValidationError("name", "Category name is required")
	}
	if postingFee < 0 {
		return nil, NewValidationError("postingFee", "Posting fee must be a positive number")
	}
	now := time.Now().UTC()
	return &JobCategory{
		ID:          uuid.New(),
		Name:        name,
		PostingFee:  postingFee,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Location is a province with its wards, in display order.
type Location struct {
	ID        uuid.UUID `json:"_id"`
	Province  string    `json:"province"`
	Wards     []string  `json:"wards"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLocation creates a location.
func NewLocation(province string, wards []string) (*Location, error) {
	if province == "" {
		return nil, NewValidationError("province", "Province name is required")
	}
	if wards == nil {
		wards = []string{}
	}
	now := time.Now().UTC()
	return &Location{
		ID:        uuid.New(),
		Province:  province,
		Wards:     wards,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasWard reports whether ward belongs to the location.
func (l *Location) HasWard(ward string) bool {
	for _, w := range l.Wards {
		if w == ward {
			return true
		}
	}
	return false
}
