package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskie-api/internal/api"
	"github.com/phrazzld/taskie-api/internal/api/docs"
	"github.com/phrazzld/taskie-api/internal/api/middleware"
	"github.com/phrazzld/taskie-api/internal/config"
	"github.com/phrazzld/taskie-api/internal/platform/metrics"
	"github.com/phrazzld/taskie-api/internal/platform/uploads"
	"github.com/phrazzld/taskie-api/internal/seed"
	"github.com/phrazzld/taskie-api/internal/service"
	"github.com/phrazzld/taskie-api/internal/service/auth"
)

// Supported values of uploads.backend.
const (
	uploadsLocal = "local"
	uploadsMinio = "minio"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	backend  *backend
	storage  uploads.Storage
	uploader *uploads.Uploader
	metrics  *metrics.Metrics

	jwtService auth.JWTService
	seeder     *seed.Seeder

	handlers       api.Handlers
	health         *api.HealthHandler
	docs           *docs.Handler
	authMiddleware *middleware.AuthMiddleware
}

// newApplication creates a new application instance with all dependencies
// initialized on top of an opened store.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, b *backend) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		backend: b,
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_hours", cfg.Auth.TokenLifetimeHours))

	app.storage, err = setupStorage(ctx, cfg.Uploads, logger)
	if err != nil {
		return nil, err
	}
	app.uploader = uploads.NewUploader(app.storage, cfg.Uploads.MaxFileSizeMB<<20, app.metrics, logger)

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	stores := b.stores
	app.seeder = seed.NewSeeder(stores, hasher, app.metrics, logger)

	users, err := service.NewUserService(stores.Users, hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	tasks, err := service.NewTaskService(stores.Tasks, stores.Categories, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}
	messages, err := service.NewMessageService(stores.Messages, stores.Tasks, stores.Users, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create message service: %w", err)
	}
	favorites, err := service.NewFavoriteService(stores.Favorites, stores.Tasks, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create favorite service: %w", err)
	}
	catalog, err := service.NewCatalogService(stores.Categories, stores.Locations)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}
	admin, err := service.NewAdminService(stores, app.seeder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin service: %w", err)
	}

	app.handlers = api.Handlers{
		Auth:      api.NewAuthHandler(users, app.jwtService, app.uploader, logger),
		Profile:   api.NewProfileHandler(users, app.uploader, logger),
		Tasks:     api.NewTaskHandler(tasks, app.uploader, logger),
		Messages:  api.NewMessageHandler(messages, logger),
		Favorites: api.NewFavoriteHandler(favorites, logger),
		Catalog:   api.NewCatalogHandler(catalog),
		Admin:     api.NewAdminHandler(admin, logger),
	}
	app.authMiddleware = middleware.NewAuthMiddleware(app.jwtService, stores.Users, logger)
	app.health = api.NewHealthHandler(cfg.Server.Version, map[string]api.Pinger{
		"database": b.ping,
		"uploads":  api.PingFunc(app.storage.Ping),
	}, logger)
	app.docs, err = docs.NewHandler(cfg.Server.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load API documentation: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStorage creates the configured upload backend.
func setupStorage(ctx context.Context, cfg config.UploadsConfig, logger *slog.Logger) (uploads.Storage, error) {
	switch cfg.Backend {
	case uploadsMinio:
		ms, err := uploads.NewMinioStorage(cfg.Minio, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
		}
		logger.Info("Upload storage initialized", slog.String("backend", uploadsMinio),
			slog.String("bucket", cfg.Minio.Bucket))
		return ms, nil
	case uploadsLocal:
		ls, err := uploads.NewLocalStorage(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
		}
		logger.Info("Upload storage initialized", slog.String("backend", uploadsLocal),
			slog.String("dir", cfg.Dir))
		return ls, nil
	default:
		return nil, fmt.Errorf("unsupported uploads backend %q", cfg.Backend)
	}
}

// shouldAutoSeed reports whether reference data is seeded at startup.
func shouldAutoSeed(cfg *config.Config) bool {
	return cfg.Seed.AutoSeed || cfg.Server.Environment == "production"
}

// autoSeed runs the smart seed when enabled. Failures are logged and do not
// stop startup.
func (app *application) autoSeed(ctx context.Context) {
	if !shouldAutoSeed(app.config) {
		return
	}
	res, err := app.seeder.Seed(ctx, seed.Options{})
	if err != nil {
		app.logger.Error("Auto-seed failed", slog.String("error", err.Error()))
		return
	}
	app.logger.Info("Auto-seed completed",
		slog.Int("categories_inserted", res.Categories.Inserted),
		slog.Int("locations_inserted", res.Locations.Inserted),
		slog.Bool("admin_created", res.Admin.Created))
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.backend != nil && app.backend.close != nil {
		app.backend.close(app.logger)
	}
	app.logger.Info("Application shutdown completed")
}
