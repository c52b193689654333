package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
)

const taskFrom = ` FROM tasks t LEFT JOIN users u ON u.id = t.requester_id`

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore.
// It panics if db is nil.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var n nullTask
	if err := row.Scan(n.dest()...); err != nil {
		return nil, err
	}
	return n.task()
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	images, err := json.Marshal(task.Images)
	if err != nil {
		return fmt.Errorf("failed to encode task images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, category, images, province, ward, price,
			posting_fee, deadline, payment_proof_url, status, requester_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		task.ID, task.Title, task.Description, task.Category, images,
		task.Location.Province, task.Location.Ward, task.Price, task.PostingFee, task.Deadline,
		task.PaymentProofURL, string(task.Status), task.RequesterID, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("requester_id", task.RequesterID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskSelect+taskFrom+` WHERE t.id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		return nil, notFoundOr(err, store.ErrTaskNotFound)
	}
	return task, nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var where whereBuilder
	if filter.RequesterID != uuid.Nil {
		where.add("t.requester_id = $%[1]d", filter.RequesterID)
	}
	if filter.Status != "" {
		where.add("t.status = $%[1]d", string(filter.Status))
	}
	if filter.Keyword != "" {
		where.add("(t.title ILIKE $%[1]d OR t.description ILIKE $%[1]d)", likePattern(filter.Keyword))
	}
	if filter.Category != "" {
		where.add("t.category = $%[1]d", filter.Category)
	}
	if filter.Province != "" {
		where.add("t.province = $%[1]d", filter.Province)
	}
	if filter.Ward != "" {
		where.add("t.ward = $%[1]d", filter.Ward)
	}
	if filter.MinPrice != nil {
		where.add("t.price >= $%[1]d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where.add("t.price <= $%[1]d", *filter.MaxPrice)
	}

	query := `SELECT ` + taskSelect + taskFrom + where.clause() + ` ORDER BY t.created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "row iteration failed", err)
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET description = $2, price = $3, status = $4, payment_proof_url = $5, updated_at = $6
		WHERE id = $1`,
		task.ID, task.Description, task.Price, string(task.Status), task.PaymentProofURL, task.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Count implements store.TaskStore.Count.
func (s *PostgresTaskStore) Count(ctx context.Context, filter store.TaskCountFilter) (int64, error) {
	var where whereBuilder
	if filter.Status != "" {
		where.add("status = $%[1]d", string(filter.Status))
	}
	if !filter.CreatedSince.IsZero() {
		where.add("created_at >= $%[1]d", filter.CreatedSince)
	}
	return countRows(ctx, s.db, "tasks", where)
}

// DeleteAll implements store.TaskStore.DeleteAll.
func (s *PostgresTaskStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.db, "tasks")
}
