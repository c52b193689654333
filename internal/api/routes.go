package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskie-api/internal/api/middleware"
)

// Handlers groups every handler mounted under /api.
type Handlers struct {
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Tasks     *TaskHandler
	Messages  *MessageHandler
	Favorites *FavoriteHandler
	Catalog   *CatalogHandler
	Admin     *AdminHandler
}

// RegisterRoutes mounts the /api routes on r. Protected routes run through
// authMiddleware and their role gate.
func RegisterRoutes(r chi.Router, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/categories", h.Catalog.GetCategories)
		r.Get("/locations", h.Catalog.GetLocations)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", h.Auth.Me)
			r.Put("/auth/role", h.Auth.SwitchRole)
			r.Put("/auth/password", h.Auth.ChangePassword)

			r.Get("/profile", h.Profile.GetProfile)
			r.Put("/profile", h.Profile.UpdateProfile)
			r.Post("/profile/avatar", h.Profile.UploadAvatar)

			r.Route("/tasks", func(r chi.Router) {
				r.With(middleware.RequireRequester).Post("/", h.Tasks.CreateTask)
				r.With(middleware.RequireRequester).Get("/my", h.Tasks.GetMyTasks)
				r.Get("/search", h.Tasks.SearchTasks)
				r.Get("/{id}", h.Tasks.GetTask)
				r.Put("/{id}", h.Tasks.UpdateTask)
				r.Delete("/{id}", h.Tasks.DeleteTask)
				r.Put("/{id}/status", h.Tasks.UpdateTaskStatus)
				r.Put("/{id}/complete", h.Tasks.CompleteTask)
				r.Post("/{id}/payment-proof", h.Tasks.UploadPaymentProof)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", h.Messages.SendMessage)
				r.Get("/conversations", h.Messages.GetConversations)
				r.Put("/{id}/read", h.Messages.MarkAsRead)
				r.Get("/{taskId}/{userId}", h.Messages.GetConversation)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Use(middleware.RequireTasker)
				r.Post("/", h.Favorites.AddFavorite)
				r.Get("/", h.Favorites.GetFavorites)
				r.Get("/check/{taskId}", h.Favorites.CheckFavorite)
				r.Delete("/{taskId}", h.Favorites.RemoveFavorite)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/users", h.Admin.GetUsers)
				r.Get("/tasks", h.Admin.GetTasks)
				r.Get("/stats", h.Admin.GetStats)
				r.Post("/seed", h.Admin.Seed)
				r.Post("/reset", h.Admin.Reset)
				r.Post("/reset-and-seed", h.Admin.ResetAndSeed)
			})
		})
	})
}
