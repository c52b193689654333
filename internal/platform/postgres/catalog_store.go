package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
)

// PostgresCategoryStore implements the store.CategoryStore interface using PostgreSQL.
type PostgresCategoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// NewPostgresCategoryStore creates a new PostgresCategoryStore.
// It panics if db is nil.
func NewPostgresCategoryStore(db store.DBTX, logger *slog.Logger) *PostgresCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCategoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "category_store")),
	}
}

const categoryColumns = `id, name, posting_fee, description, created_at, updated_at`

func scanCategory(row rowScanner) (*domain.JobCategory, error) {
	var c domain.JobCategory
	if err := row.Scan(&c.ID, &c.Name, &c.PostingFee, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List implements store.CategoryStore.List.
func (s *PostgresCategoryStore) List(ctx context.Context) ([]*domain.JobCategory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM job_categories ORDER BY name ASC`)
	if err != nil {
		return nil, store.NewStoreError("job category", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	categories := []*domain.JobCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, store.NewStoreError("job category", "list", "scan failed", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("job category", "list", "row iteration failed", err)
	}
	return categories, nil
}

// GetByName implements store.CategoryStore.GetByName.
func (s *PostgresCategoryStore) GetByName(ctx context.Context, name string) (*domain.JobCategory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM job_categories WHERE name = $1`, name)
	c, err := scanCategory(row)
	if err != nil {
		return nil, notFoundOr(err, store.ErrCategoryNotFound)
	}
	return c, nil
}

// Create implements store.CategoryStore.Create.
func (s *PostgresCategoryStore) Create(ctx context.Context, c *domain.JobCategory) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_categories (`+categoryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.PostingFee, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	s.logger.Debug("job category created", slog.String("name", c.Name))
	return nil
}

// Count implements store.CategoryStore.Count.
func (s *PostgresCategoryStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.db, "job_categories", whereBuilder{})
}

// DeleteAll implements store.CategoryStore.DeleteAll.
func (s *PostgresCategoryStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.db, "job_categories")
}

// PostgresLocationStore implements the store.LocationStore interface using PostgreSQL.
type PostgresLocationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.LocationStore = (*PostgresLocationStore)(nil)

// NewPostgresLocationStore creates a new PostgresLocationStore.
// It panics if db is nil.
func NewPostgresLocationStore(db store.DBTX, logger *slog.Logger) *PostgresLocationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLocationStore{
		db:     db,
		logger: logger.With(slog.String("component", "location_store")),
	}
}

const locationColumns = `id, province, wards, created_at, updated_at`

func scanLocation(row rowScanner) (*domain.Location, error) {
	var (
		l     domain.Location
		wards []byte
	)
	if err := row.Scan(&l.ID, &l.Province, &wards, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Wards = []string{}
	if len(wards) > 0 {
		if err := json.Unmarshal(wards, &l.Wards); err != nil {
			return nil, fmt.Errorf("failed to decode wards of %q: %w", l.Province, err)
		}
	}
	return &l, nil
}

// List implements store.LocationStore.List.
func (s *PostgresLocationStore) List(ctx context.Context) ([]*domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY province ASC`)
	if err != nil {
		return nil, store.NewStoreError("location", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	locations := []*domain.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, store.NewStoreError("location", "list", "scan failed", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("location", "list", "row iteration failed", err)
	}
	return locations, nil
}

// GetByProvince implements store.LocationStore.GetByProvince.
func (s *PostgresLocationStore) GetByProvince(ctx context.Context, province string) (*domain.Location, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE province = $1`, province)
	l, err := scanLocation(row)
	if err != nil {
		return nil, notFoundOr(err, store.ErrLocationNotFound)
	}
	return l, nil
}

// Create implements store.LocationStore.Create.
func (s *PostgresLocationStore) Create(ctx context.Context, l *domain.Location) error {
	wards, err := json.Marshal(l.Wards)
	if err != nil {
		return fmt.Errorf("failed to encode wards: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO locations (`+locationColumns+`)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.Province, wards, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	s.logger.Debug("location created",
		slog.String("province", l.Province),
		slog.Int("wards", len(l.Wards)))
	return nil
}

// Count implements store.LocationStore.Count.
func (s *PostgresLocationStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.db, "locations", whereBuilder{})
}

// DeleteAll implements store.LocationStore.DeleteAll.
func (s *PostgresLocationStore) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, s.db, "locations")
}

// NewStores builds every PostgreSQL store on top of db.
func NewStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Users:      NewPostgresUserStore(db, logger),
		Tasks:      NewPostgresTaskStore(db, logger),
		Messages:   NewPostgresMessageStore(db, logger),
		Favorites:  NewPostgresFavoriteStore(db, logger),
		Categories: NewPostgresCategoryStore(db, logger),
		Locations:  NewPostgresLocationStore(db, logger),
	}
}
