package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
)

const messageColumns = `m.id, m.task_id, m.sender_id, m.receiver_id, m.content, m.is_read,
	m.created_at, m.updated_at`

// messagePopulated reads a message with its task, sender and receiver.
var messagePopulated = `SELECT ` + messageColumns + `,
	t.id, t.title, t.status, t.requester_id, ` +
	userSummarySelect("s") + `, ` + userSummarySelect("r") + `
	FROM messages m
	LEFT JOIN tasks t ON t.id = m.task_id
	LEFT JOIN users s ON s.id = m.sender_id
	LEFT JOIN users r ON r.id = m.receiver_id`

// PostgresMessageStore implements the store.MessageStore interface using PostgreSQL.
type PostgresMessageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.MessageStore = (*PostgresMessageStore)(nil)

// NewPostgresMessageStore creates a new PostgresMessageStore.
// It panics if db is nil.
func NewPostgresMessageStore(db store.DBTX, logger *slog.Logger) *PostgresMessageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMessageStore{
		db:     db,
		logger: logger.With(slog.String("component", "message_store")),
	}
}

func messageDest(m *domain.Message) []any {
	return []any{
		&m.ID, &m.TaskID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead,
		&m.CreatedAt, &m.UpdatedAt,
	}
}

func scanPopulatedMessage(row rowScanner) (*domain.Message, error) {
	var (
		m           domain.Message
		taskID      uuid.NullUUID
		taskTitle   sql.NullString
		taskStatus  sql.NullString
		requesterID uuid.NullUUID
		sender      nullUserSummary
		receiver    nullUserSummary
	)
	dest := append(messageDest(&m), &taskID, &taskTitle, &taskStatus, &requesterID)
	dest = append(dest, sender.dest()...)
	dest = append(dest, receiver.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if taskID.Valid {
		m.Task = &domain.TaskSummary{
			ID:          taskID.UUID,
			Title:       taskTitle.String,
			Status:      domain.TaskStatus(taskStatus.String),
			RequesterID: requesterID.UUID,
		}
	}
	m.Sender = sender.summary()
	m.Receiver = receiver.summary()
	return &m, nil
}

func (s *PostgresMessageStore) queryPopulated(
	ctx context.Context,
	op string,
	query string,
	args ...any,
) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query messages",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("message", op, "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	messages := []*domain.Message{}
	for rows.Next() {
		m, err := scanPopulatedMessage(rows)
		if err != nil {
			return nil, store.NewStoreError("message", op, "scan failed", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("message", op, "row iteration failed", err)
	}
	return messages, nil
}

// Create implements store.MessageStore.Create.
func (s *PostgresMessageStore) Create(ctx context.Context, msg *domain.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, task_id, sender_id, receiver_id, content, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		msg.ID, msg.TaskID, msg.SenderID, msg.ReceiverID, msg.Content, msg.IsRead,
		msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert message",
			slog.String("message_id", msg.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.MessageStore.GetByID.
func (s *PostgresMessageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var m domain.Message
	err := s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages m WHERE m.id = $1`, id).
		Scan(messageDest(&m)...)
	if err != nil {
		return nil, notFoundOr(err, store.ErrMessageNotFound)
	}
	return &m, nil
}

// ListForUser implements store.MessageStore.ListForUser.
func (s *PostgresMessageStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	return s.queryPopulated(ctx, "list for user",
		messagePopulated+` WHERE m.sender_id = $1 OR m.receiver_id = $1 ORDER BY m.created_at DESC`,
		userID)
}

// ListConversation implements store.MessageStore.ListConversation.
func (s *PostgresMessageStore) ListConversation(
	ctx context.Context,
	taskID, userA, userB uuid.UUID,
) ([]*domain.Message, error) {
	return s.queryPopulated(ctx, "list conversation",
		messagePopulated+` WHERE m.task_id = $1
			AND ((m.sender_id = $2 AND m.receiver_id = $3) OR (m.sender_id = $3 AND m.receiver_id = $2))
			ORDER BY m.created_at ASC`,
		taskID, userA, userB)
}

// CountUnread implements store.MessageStore.CountUnread.
func (s *PostgresMessageStore) CountUnread(
	ctx context.Context,
	taskID, senderID, receiverID uuid.UUID,
) (int64, error) {
	var where whereBuilder
	where.add("task_id = $%[1]d", taskID)
	where.add("sender_id = $%[1]d", senderID)
	where.add("receiver_id = $%[1]d", receiverID)
	where.conds = append(where.conds, "is_read = FALSE")
	return countRows(ctx, s.db, "messages", where)
}

// MarkRead implements store.MessageStore.MarkRead.
func (s *PostgresMessageStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrMessageNotFound)
}

// MarkConversationRead implements store.MessageStore.MarkConversationRead.
func (s *PostgresMessageStore) MarkConversationRead(
	ctx context.Context,
	taskID, senderID, receiverID uuid.UUID,
) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, updated_at = NOW()
		WHERE task_id = $1 AND sender_id = $2 AND receiver_id = $3 AND is_read = FALSE`,
		taskID, senderID, receiverID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark conversation read",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("message", "mark read", "rows affected unavailable", err)
	}
	return n, nil
}

// Count implements store.MessageStore.Count.
func (s *PostgresMessageStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.db, "messages", whereBuilder{})
}

// DeleteAll implements store.MessageStore.DeleteAll.
func (s *PostgresMessageStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.db, "messages")
}
