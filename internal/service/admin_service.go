package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/seed"
	"github.com/phrazzld/taskie-api/internal/store"
)

// RecentWindow is how far back the "recent" statistics look.
const RecentWindow = 7 * 24 * time.Hour

// UserStats counts users by role.
type UserStats struct {
	Total      int64 `json:"total"`
	Requesters int64 `json:"requesters"`
	Taskers    int64 `json:"taskers"`
	Admins     int64 `json:"admins"`
	Recent     int64 `json:"recent"`
}

// TaskStats counts tasks by status.
type TaskStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Recent    int64 `json:"recent"`
}

// MessageStats counts messages.
type MessageStats struct {
	Total int64 `json:"total"`
}

// Stats is the platform overview shown to administrators.
type Stats struct {
	Users    UserStats    `json:"users"`
	Tasks    TaskStats    `json:"tasks"`
	Messages MessageStats `json:"messages"`
}

// AdminService provides platform-wide administration.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	Stats(ctx context.Context) (*Stats, error)
	Seed(ctx context.Context, opts seed.Options) (*seed.Result, error)
	Reset(ctx context.Context) (*seed.ResetResult, error)

	// ResetAndSeed deletes everything, then seeds from scratch.
	ResetAndSeed(ctx context.Context, comprehensive bool) (*seed.ResetResult, *seed.Result, error)
}

type adminServiceImpl struct {
	stores store.Stores
	seeder *seed.Seeder
	logger *slog.Logger
	now    func() time.Time
}

// NewAdminService creates an AdminService.
func NewAdminService(stores store.Stores, seeder *seed.Seeder, log *slog.Logger) (AdminService, error) {
	if seeder == nil {
		return nil, errors.New("seeder cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &adminServiceImpl{
		stores: stores,
		seeder: seeder,
		logger: log.With(slog.String("component", "admin_service")),
		now:    time.Now,
	}, nil
}

func (s *adminServiceImpl) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.stores.Users.List(ctx)
	if err != nil {
		return nil, NewServiceError("admin", "list_users", err)
	}
	return users, nil
}

func (s *adminServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.stores.Tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		return nil, NewServiceError("admin", "list_tasks", err)
	}
	return tasks, nil
}

func (s *adminServiceImpl) Stats(ctx context.Context) (*Stats, error) {
	since := s.now().UTC().Add(-RecentWindow)

	var st Stats
	userCounts := []struct {
		dst    *int64
		filter store.UserCountFilter
	}{
		{&st.Users.Total, store.UserCountFilter{}},
		{&st.Users.Requesters, store.UserCountFilter{Role: domain.RoleRequester}},
		{&st.Users.Taskers, store.UserCountFilter{Role: domain.RoleTasker}},
		{&st.Users.Admins, store.UserCountFilter{Role: domain.RoleAdmin}},
		{&st.Users.Recent, store.UserCountFilter{CreatedSince: since}},
	}
	for _, c := range userCounts {
		n, err := s.stores.Users.Count(ctx, c.filter)
		if err != nil {
			return nil, NewServiceError("admin", "stats", err)
		}
		*c.dst = n
	}

	taskCounts := []struct {
		dst    *int64
		filter store.TaskCountFilter
	}{
		{&st.Tasks.Total, store.TaskCountFilter{}},
		{&st.Tasks.Pending, store.TaskCountFilter{Status: domain.TaskStatusPending}},
		{&st.Tasks.Completed, store.TaskCountFilter{Status: domain.TaskStatusCompleted}},
		{&st.Tasks.Recent, store.TaskCountFilter{CreatedSince: since}},
	}
	for _, c := range taskCounts {
		n, err := s.stores.Tasks.Count(ctx, c.filter)
		if err != nil {
			return nil, NewServiceError("admin", "stats", err)
		}
		*c.dst = n
	}

	n, err := s.stores.Messages.Count(ctx)
	if err != nil {
		return nil, NewServiceError("admin", "stats", err)
	}
	st.Messages.Total = n
	return &st, nil
}

func (s *adminServiceImpl) Seed(ctx context.Context, opts seed.Options) (*seed.Result, error) {
	res, err := s.seeder.Seed(ctx, opts)
	if err != nil {
		return nil, NewServiceError("admin", "seed", err)
	}
	return res, nil
}

func (s *adminServiceImpl) Reset(ctx context.Context) (*seed.ResetResult, error) {
	logger.FromContextOrDefault(ctx, s.logger).Warn("resetting database")
	res, err := s.seeder.Reset(ctx)
	if err != nil {
		return nil, NewServiceError("admin", "reset", err)
	}
	return res, nil
}

func (s *adminServiceImpl) ResetAndSeed(
	ctx context.Context,
	comprehensive bool,
) (*seed.ResetResult, *seed.Result, error) {
	reset, err := s.Reset(ctx)
	if err != nil {
		return nil, nil, err
	}
	seeded, err := s.Seed(ctx, seed.Options{Comprehensive: comprehensive})
	if err != nil {
		return reset, nil, err
	}
	return reset, seeded, nil
}
