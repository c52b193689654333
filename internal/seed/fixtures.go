// Package seed loads the embedded reference and demo fixtures and writes
// them through the store interfaces.
package seed

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Reference is the reference data every deployment needs.
type Reference struct {
	Categories []CategoryFixture `yaml:"categories"`
	Locations  []LocationFixture `yaml:"locations"`
}

// CategoryFixture describes one job category.
type CategoryFixture struct {
	Name        string  `yaml:"name"`
	PostingFee  float64 `yaml:"postingFee"`
	Description string  `yaml:"description"`
}

// LocationFixture describes one province and its wards.
type LocationFixture struct {
	Province string   `yaml:"province"`
	Wards    []string `yaml:"wards"`
}

// Demo is the sample marketplace used by the comprehensive seed.
type Demo struct {
	Password  string            `yaml:"password"`
	Users     []UserFixture     `yaml:"users"`
	Tasks     []TaskFixture     `yaml:"tasks"`
	Messages  []MessageFixture  `yaml:"messages"`
	Favorites []FavoriteFixture `yaml:"favorites"`
}

// UserFixture describes a demo account.
type UserFixture struct {
	Email       string `yaml:"email"`
	FullName    string `yaml:"fullName"`
	DateOfBirth string `yaml:"dateOfBirth"`
	Phone       string `yaml:"phone"`
	Role        string `yaml:"role"`
}

// TaskFixture describes a demo task. Requester is an email of Users.
type TaskFixture struct {
	Key             string   `yaml:"key"`
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	Category        string   `yaml:"category"`
	Images          []string `yaml:"images"`
	Province        string   `yaml:"province"`
	WardIndex       int      `yaml:"wardIndex"`
	Price           float64  `yaml:"price"`
	DeadlineDays    int      `yaml:"deadlineDays"`
	PaymentProofURL string   `yaml:"paymentProofUrl"`
	Status          string   `yaml:"status"`
	Requester       string   `yaml:"requester"`
}

// MessageFixture describes a demo message between two accounts about a task.
type MessageFixture struct {
	Task    string `yaml:"task"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Content string `yaml:"content"`
	Read    bool   `yaml:"read"`
}

// FavoriteFixture bookmarks a task for a tasker.
type FavoriteFixture struct {
	Tasker string `yaml:"tasker"`
	Task   string `yaml:"task"`
}

// LoadReference parses the embedded reference data.
func LoadReference() (*Reference, error) {
	var ref Reference
	if err := load("data/reference.yaml", &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// LoadDemo parses the embedded demo data.
func LoadDemo() (*Demo, error) {
	var demo Demo
	if err := load("data/demo.yaml", &demo); err != nil {
		return nil, err
	}
	return &demo, nil
}

func load(name string, out any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
