package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
)

const userColumns = `id, full_name, date_of_birth, email, phone, hashed_password,
	avatar_url, proof_of_experience_url, active_role, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It panics if db is nil.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u     domain.User
		email sql.NullString
		phone sql.NullString
		role  sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.FullName, &u.DateOfBirth, &email, &phone, &u.HashedPassword,
		&u.AvatarURL, &u.ProofOfExperienceURL, &role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.Phone = phone.String
	u.CurrentRole = domain.Role(role.String)
	return &u, nil
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID, user.FullName, user.DateOfBirth, nullString(user.Email), nullString(user.Phone),
		user.HashedPassword, user.AvatarURL, user.ProofOfExperienceURL,
		nullString(string(user.CurrentRole)), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user contact already registered", slog.String("user_id", user.ID.String()))
		} else {
			log.Error("failed to insert user", slog.String("error", err.Error()))
		}
		return MapError(err)
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, store.ErrUserNotFound)
	}
	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		domain.NormalizeEmail(email))
	user, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, store.ErrUserNotFound)
	}
	return user, nil
}

// GetByPhone implements store.UserStore.GetByPhone.
func (s *PostgresUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFoundOr(err, store.ErrUserNotFound)
	}
	return user, nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET full_name = $2, date_of_birth = $3, email = $4, phone = $5, hashed_password = $6,
			avatar_url = $7, proof_of_experience_url = $8, active_role = $9, updated_at = $10
		WHERE id = $1`,
		user.ID, user.FullName, user.DateOfBirth, nullString(user.Email), nullString(user.Phone),
		user.HashedPassword, user.AvatarURL, user.ProofOfExperienceURL,
		nullString(string(user.CurrentRole)), user.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// List implements store.UserStore.List.
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, store.NewStoreError("user", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, store.NewStoreError("user", "list", "scan failed", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "list", "row iteration failed", err)
	}
	return users, nil
}

// Count implements store.UserStore.Count.
func (s *PostgresUserStore) Count(ctx context.Context, filter store.UserCountFilter) (int64, error) {
	var where whereBuilder
	if filter.Role != domain.RoleNone {
		where.add("active_role = $%[1]d", string(filter.Role))
	}
	if !filter.CreatedSince.IsZero() {
		where.add("created_at >= $%[1]d", filter.CreatedSince)
	}
	return countRows(ctx, s.db, "users", where)
}

// DeleteAll implements store.UserStore.DeleteAll.
func (s *PostgresUserStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.db, "users")
}

// countRows counts the rows of table matching where.
func countRows(ctx context.Context, db store.DBTX, table string, where whereBuilder) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+where.clause(), where.args...).Scan(&n)
	if err != nil {
		return 0, store.NewStoreError(table, "count", "query failed", MapError(err))
	}
	return n, nil
}

// deleteAll removes every row of table and reports how many were removed.
func deleteAll(ctx context.Context, db store.DBTX, table string) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM `+table)
	if err != nil {
		return 0, store.NewStoreError(table, "delete all", "statement failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError(table, "delete all", "rows affected unavailable", err)
	}
	return n, nil
}
