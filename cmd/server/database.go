package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql
	"github.com/phrazzld/taskie-api/internal/api"
	"github.com/phrazzld/taskie-api/internal/config"
	"github.com/phrazzld/taskie-api/internal/platform/mongostore"
	"github.com/phrazzld/taskie-api/internal/platform/postgres"
	"github.com/phrazzld/taskie-api/internal/store"
)

// Supported values of database.driver.
const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
)

const connectTimeout = 10 * time.Second

// backend is an opened store together with its health check and cleanup.
type backend struct {
	stores store.Stores
	ping   api.Pinger
	close  func(*slog.Logger)
}

// openBackend connects to the configured store. Postgres databases are
// migrated to the latest schema before use.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Database.Driver {
	case driverMongo:
		return openMongo(ctx, cfg, logger)
	case driverPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &backend{
		stores: postgres.NewStores(db, logger),
		ping:   db,
		close: func(l *slog.Logger) {
			if err := db.Close(); err != nil {
				l.Error("Error closing database connection", slog.String("error", err.Error()))
			}
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	ms, err := mongostore.NewStore(connectCtx, cfg.Database.URL, cfg.Database.MongoDatabase, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	logger.Info("Mongo connection established", slog.String("database", cfg.Database.MongoDatabase))

	return &backend{
		stores: ms.Stores(),
		ping:   api.PingFunc(ms.Ping),
		close: func(l *slog.Logger) {
			if err := ms.Close(); err != nil {
				l.Error("Error closing mongo connection", slog.String("error", err.Error()))
			}
		},
	}, nil
}

// setupAppDatabase opens the postgres connection pool and checks it.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

// maskPassword hides the password of a connection URL for logging.
func maskPassword(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil || parsedURL.User == nil {
		return dbURL
	}
	if _, hasPassword := parsedURL.User.Password(); hasPassword {
		parsedURL.User = url.UserPassword(parsedURL.User.Username(), "****")
	}
	return parsedURL.String()
}
