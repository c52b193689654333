package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
)

// FavoriteService manages the tasks a tasker has bookmarked.
type FavoriteService interface {
	Add(ctx context.Context, taskerID, taskID uuid.UUID) (*domain.Favorite, error)

	// List returns the tasker's favorites, newest first. Favorites of
	// deleted tasks are omitted.
	List(ctx context.Context, taskerID uuid.UUID) ([]*domain.Favorite, error)

	IsFavorited(ctx context.Context, taskerID, taskID uuid.UUID) (bool, error)
	Remove(ctx context.Context, taskerID, taskID uuid.UUID) error
}

type favoriteServiceImpl struct {
	favorites store.FavoriteStore
	tasks     store.TaskStore
	logger    *slog.Logger
}

// NewFavoriteService creates a FavoriteService.
func NewFavoriteService(favorites store.FavoriteStore, tasks store.TaskStore, log *slog.Logger) (FavoriteService, error) {
	if favorites == nil || tasks == nil {
		return nil, errors.New("favorite and task stores are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &favoriteServiceImpl{
		favorites: favorites,
		tasks:     tasks,
		logger:    log.With(slog.String("component", "favorite_service")),
	}, nil
}

func (s *favoriteServiceImpl) Add(ctx context.Context, taskerID, taskID uuid.UUID) (*domain.Favorite, error) {
	if taskID == uuid.Nil {
		return nil, invalid("Please provide taskId")
	}
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	fav, err := domain.NewFavorite(taskerID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.favorites.Create(ctx, fav); err != nil {
		if errors.Is(err, store.ErrFavoriteExists) {
			return nil, ErrAlreadyFavorited
		}
		return nil, NewServiceError("favorite", "add", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("favorite added",
		slog.String("tasker_id", taskerID.String()),
		slog.String("task_id", taskID.String()))
	return fav, nil
}

func (s *favoriteServiceImpl) List(ctx context.Context, taskerID uuid.UUID) ([]*domain.Favorite, error) {
	favs, err := s.favorites.ListByTasker(ctx, taskerID)
	if err != nil {
		return nil, NewServiceError("favorite", "list", err)
	}
	valid := make([]*domain.Favorite, 0, len(favs))
	for _, f := range favs {
		if f.Task != nil {
			valid = append(valid, f)
		}
	}
	return valid, nil
}

func (s *favoriteServiceImpl) IsFavorited(ctx context.Context, taskerID, taskID uuid.UUID) (bool, error) {
	ok, err := s.favorites.Exists(ctx, taskerID, taskID)
	if err != nil {
		return false, NewServiceError("favorite", "check", err)
	}
	return ok, nil
}

func (s *favoriteServiceImpl) Remove(ctx context.Context, taskerID, taskID uuid.UUID) error {
	if err := s.favorites.Delete(ctx, taskerID, taskID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}
