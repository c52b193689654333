package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/service/auth"
	"github.com/phrazzld/taskie-api/internal/store"
)

// PasswordManager hashes new passwords and verifies submitted ones.
type PasswordManager interface {
	auth.PasswordHasher
	auth.PasswordVerifier
}

// RegisterParams holds the fields of a registration request.
type RegisterParams struct {
	FullName             string
	DateOfBirth          time.Time
	Email                string
	Phone                string
	Password             string
	ConfirmPassword      string
	ProofOfExperienceURL string
}

// ProfileUpdate holds the profile fields to change. Empty fields are kept.
type ProfileUpdate struct {
	FullName    string
	DateOfBirth time.Time
	Email       string
	Phone       string
}

// UserService provides account operations.
type UserService interface {
	// Register creates an account without a role.
	Register(ctx context.Context, params RegisterParams) (*domain.User, error)

	// Login resolves emailOrPhone as an email first, then as a phone number,
	// and verifies the password.
	Login(ctx context.Context, emailOrPhone, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// SwitchRole sets the user's current role to requester or tasker.
	SwitchRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error)

	// ChangePassword replaces the password after verifying the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error

	// UpdateProfile changes the non-empty fields of update.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)

	// SetAvatar records the URL of a freshly uploaded avatar.
	SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*domain.User, error)
}

type userServiceImpl struct {
	users     store.UserStore
	passwords PasswordManager
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, passwords PasswordManager, log *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if passwords == nil {
		return nil, errors.New("password manager cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &userServiceImpl{
		users:     users,
		passwords: passwords,
		logger:    log.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, p RegisterParams) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(p.FullName) == "" || p.DateOfBirth.IsZero() || p.Password == "" {
		return nil, invalid("Please provide full name, date of birth, and password")
	}
	email := domain.NormalizeEmail(p.Email)
	phone := strings.TrimSpace(p.Phone)
	if email == "" && phone == "" {
		return nil, domain.ErrMissingContact
	}
	if p.Password != p.ConfirmPassword {
		return nil, invalid("Passwords do not match")
	}

	taken, err := s.contactTaken(ctx, uuid.Nil, email, phone)
	if err != nil {
		return nil, NewServiceError("user", "register", err)
	}
	if taken {
		log.Debug("registration with existing contact", slog.String("email", email))
		return nil, ErrUserExists
	}

	user, err := domain.NewUser(p.FullName, p.DateOfBirth, email, phone, p.Password)
	if err != nil {
		return nil, err
	}
	user.ProofOfExperienceURL = p.ProofOfExperienceURL

	if user.HashedPassword, err = s.passwords.Hash(p.Password); err != nil {
		return nil, NewServiceError("user", "register", err)
	}
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			return nil, ErrUserExists
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// contactTaken reports whether email or phone belongs to a user other than self.
func (s *userServiceImpl) contactTaken(ctx context.Context, self uuid.UUID, email, phone string) (bool, error) {
	if email != "" {
		u, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && u.ID != self:
			return true, nil
		case err != nil && !errors.Is(err, store.ErrUserNotFound):
			return false, err
		}
	}
	if phone != "" {
		u, err := s.users.GetByPhone(ctx, phone)
		switch {
		case err == nil && u.ID != self:
			return true, nil
		case err != nil && !errors.Is(err, store.ErrUserNotFound):
			return false, err
		}
	}
	return false, nil
}

func (s *userServiceImpl) Login(ctx context.Context, emailOrPhone, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	identifier := strings.TrimSpace(emailOrPhone)
	if identifier == "" || password == "" {
		return nil, invalid("Please enter email/phone number and password")
	}

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(identifier))
	if errors.Is(err, store.ErrUserNotFound) {
		user, err = s.users.GetByPhone(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown account")
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "login", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "login", err)
	}
	return user, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *userServiceImpl) SwitchRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error) {
	next := domain.Role(role)
	if !next.IsSelectable() {
		return nil, ErrInvalidRole
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	user.CurrentRole = next
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, NewServiceError("user", "switch_role", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("role switched",
		slog.String("user_id", userID.String()),
		slog.String("role", role))
	return user, nil
}

func (s *userServiceImpl) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	currentPassword, newPassword string,
) error {
	if currentPassword == "" || newPassword == "" {
		return invalid("Please provide both current and new password")
	}
	if len(newPassword) < domain.MinPasswordLength {
		return invalid("New password must be at least 6 characters long")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}
	if err := s.passwords.Compare(user.HashedPassword, currentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrIncorrectPassword
		}
		return NewServiceError("user", "change_password", err)
	}

	hashed, err := s.passwords.Hash(newPassword)
	if err != nil {
		return NewServiceError("user", "change_password", err)
	}
	user.HashedPassword = hashed
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return NewServiceError("user", "change_password", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password changed",
		slog.String("user_id", userID.String()))
	return nil
}

func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update ProfileUpdate,
) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if name := strings.TrimSpace(update.FullName); name != "" {
		user.FullName = name
	}
	if !update.DateOfBirth.IsZero() {
		user.DateOfBirth = update.DateOfBirth
	}
	if email := domain.NormalizeEmail(update.Email); email != "" {
		user.Email = email
	}
	if phone := strings.TrimSpace(update.Phone); phone != "" {
		user.Phone = phone
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.contactTaken(ctx, user.ID, user.Email, user.Phone)
	if err != nil {
		return nil, NewServiceError("user", "update_profile", err)
	}
	if taken {
		return nil, ErrUserExists
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			return nil, ErrUserExists
		}
		return nil, NewServiceError("user", "update_profile", err)
	}
	return user, nil
}

func (s *userServiceImpl) SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	user.AvatarURL = avatarURL
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, NewServiceError("user", "set_avatar", err)
	}
	return user, nil
}
