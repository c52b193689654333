package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
)

// PostgresFavoriteStore implements the store.FavoriteStore interface using PostgreSQL.
type PostgresFavoriteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.FavoriteStore = (*PostgresFavoriteStore)(nil)

// NewPostgresFavoriteStore creates a new PostgresFavoriteStore.
// It panics if db is nil.
func NewPostgresFavoriteStore(db store.DBTX, logger *slog.Logger) *PostgresFavoriteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFavoriteStore{
		db:     db,
		logger: logger.With(slog.String("component", "favorite_store")),
	}
}

// Create implements store.FavoriteStore.Create.
func (s *PostgresFavoriteStore) Create(ctx context.Context, fav *domain.Favorite) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (id, tasker_id, task_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		fav.ID, fav.TaskerID, fav.TaskID, fav.CreatedAt, fav.UpdatedAt,
	)
	if err != nil {
		if !IsUniqueViolation(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert favorite",
				slog.String("tasker_id", fav.TaskerID.String()),
				slog.String("task_id", fav.TaskID.String()),
				slog.String("error", err.Error()))
		}
		return MapError(err)
	}
	return nil
}

// Exists implements store.FavoriteStore.Exists.
func (s *PostgresFavoriteStore) Exists(ctx context.Context, taskerID, taskID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE tasker_id = $1 AND task_id = $2)`,
		taskerID, taskID).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// ListByTasker implements store.FavoriteStore.ListByTasker.
func (s *PostgresFavoriteStore) ListByTasker(ctx context.Context, taskerID uuid.UUID) ([]*domain.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.tasker_id, f.task_id, f.created_at, f.updated_at, `+taskSelect+`
		FROM favorites f
		LEFT JOIN tasks t ON t.id = f.task_id
		LEFT JOIN users u ON u.id = t.requester_id
		WHERE f.tasker_id = $1
		ORDER BY f.created_at DESC`, taskerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list favorites",
			slog.String("tasker_id", taskerID.String()),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("favorite", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	favorites := []*domain.Favorite{}
	for rows.Next() {
		var (
			f domain.Favorite
			t nullTask
		)
		dest := append([]any{&f.ID, &f.TaskerID, &f.TaskID, &f.CreatedAt, &f.UpdatedAt}, t.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, store.NewStoreError("favorite", "list", "scan failed", err)
		}
		if f.Task, err = t.task(); err != nil {
			return nil, store.NewStoreError("favorite", "list", "decode failed", err)
		}
		favorites = append(favorites, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("favorite", "list", "row iteration failed", err)
	}
	return favorites, nil
}

// Delete implements store.FavoriteStore.Delete.
func (s *PostgresFavoriteStore) Delete(ctx context.Context, taskerID, taskID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE tasker_id = $1 AND task_id = $2`, taskerID, taskID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrFavoriteNotFound)
}

// DeleteAll implements store.FavoriteStore.DeleteAll.
func (s *PostgresFavoriteStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.db, "favorites")
}
