package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/taskie-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskie-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewRecoverer(app.config.Server.IsDevelopment(), app.logger))
	r.Use(app.metrics.Middleware)

	api.RegisterRoutes(r, app.handlers, app.authMiddleware)

	// Uploaded images are public.
	r.Get("/uploads/{folder}/{name}", app.uploader.ServeFile)

	r.Get("/api-docs", app.docs.UI)
	r.Get("/api-docs.json", app.docs.Spec)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())
	r.Get("/health", app.health.Health)
	r.Get("/", app.health.Root)

	return r
}
