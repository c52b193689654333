package api

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
)

// RegisterRequest is the body of POST /api/auth/register. Multipart forms
// use the same field names.
type RegisterRequest struct {
	FullName        string `json:"fullName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

// AuthResponse is the payload of successful registration and login.
type AuthResponse struct {
	ID          uuid.UUID   `json:"_id"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	CurrentRole domain.Role `json:"currentRole"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
	Token       string      `json:"token"`
}

// SwitchRoleRequest is the body of PUT /api/auth/role.
type SwitchRoleRequest struct {
	Role string `json:"role"`
}

// RoleResponse is the payload of a role switch.
type RoleResponse struct {
	CurrentRole domain.Role `json:"currentRole"`
}

// ChangePasswordRequest is the body of PUT /api/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest is the body of PUT /api/profile.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName"`
	DateOfBirth string `json:"dateOfBirth"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// AvatarResponse is the payload of an avatar upload.
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Price is kept raw
// so that numbers and numeric strings are both accepted.
type UpdateTaskRequest struct {
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
}

// UpdateStatusRequest is the body of PUT /api/tasks/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// PaymentProofResponse is the payload of a payment proof upload.
type PaymentProofResponse struct {
	PaymentProofURL string `json:"paymentProofUrl"`
}

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	TaskID     string `json:"taskId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// AddFavoriteRequest is the body of POST /api/favorites.
type AddFavoriteRequest struct {
	TaskID string `json:"taskId"`
}

// FavoriteStatusResponse is the payload of GET /api/favorites/check/{taskId}.
type FavoriteStatusResponse struct {
	IsFavorited bool `json:"isFavorited"`
}

// ResetAndSeedRequest is the optional body of POST /api/admin/reset-and-seed.
type ResetAndSeedRequest struct {
	Comprehensive bool `json:"comprehensive"`
}
