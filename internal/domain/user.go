package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength is the minimum number of characters in a plaintext password.
const MinPasswordLength = 6

// Role is the permission class a user currently acts under.
type Role string

// Possible user roles. A freshly registered user has RoleNone until they pick one.
const (
	RoleNone      Role = ""
	RoleRequester Role = "requester"
	RoleTasker    Role = "tasker"
	RoleAdmin     Role = "admin"
)

// IsValid reports whether r is one of the known roles (RoleNone excluded).
func (r Role) IsValid() bool {
	switch r {
	case RoleRequester, RoleTasker, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsSelectable reports whether a user may switch themselves into r.
// The admin role is only ever assigned by seeding.
func (r Role) IsSelectable() bool {
	return r == RoleRequester || r == RoleTasker
}

var (
	emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)
)

// User represents a registered account of the marketplace.
type User struct {
	ID                   uuid.UUID `json:"_id"`
	FullName             string    `json:"fullName"`
	DateOfBirth          time.Time `json:"dateOfBirth"`
	Email                string    `json:"email,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Password             string    `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword       string    `json:"-"` // Never expose password hash in JSON
	AvatarURL            string    `json:"avatarUrl,omitempty"`
	ProofOfExperienceURL string    `json:"proofOfExperienceUrl,omitempty"`
	CurrentRole          Role      `json:"currentRole,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// UserSummary is the public projection of a user embedded in other entities.
type UserSummary struct {
	ID        uuid.UUID `json:"_id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

// NewUser creates a new User with a fresh ID and timestamps.
// Email is normalized before validation. The caller is responsible for hashing
// the plaintext password before the user is stored.
func NewUser(fullName string, dateOfBirth time.Time, email, phone, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New(),
		FullName:    strings.TrimSpace(fullName),
		DateOfBirth: dateOfBirth,
		Email:       NormalizeEmail(email),
		Phone:       strings.TrimSpace(phone),
		Password:    password,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrInvalidID
	}
	if u.FullName == "" {
		return NewValidationError("fullName", "Full name is required")
	}
	if u.DateOfBirth.IsZero() {
		return NewValidationError("dateOfBirth", "Date of birth is required")
	}
	if u.Email == "" && u.Phone == "" {
		return ErrMissingContact
	}
	if u.Email != "" && !IsValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	if u.Phone != "" && !IsValidPhone(u.Phone) {
		return ErrInvalidPhone
	}
	if u.CurrentRole != RoleNone && !u.CurrentRole.IsValid() {
		return NewValidationError("currentRole", "Invalid role")
	}

	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from the store only carry the hash.
		return NewValidationError("password", "Password is required")
	}

	return nil
}

// Summary returns the public projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
	}
}

// HasRole reports whether the user currently acts under role.
func (u *User) HasRole(role Role) bool {
	return u.CurrentRole == role
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email looks like a deliverable address.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone reports whether phone consists of 10 or 11 digits.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
