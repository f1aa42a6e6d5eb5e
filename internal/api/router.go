/**
 * @description
 * This file sets up the HTTP router using go-chi/chi. It defines the API
 * routes, applies middleware for logging, panic recovery, timeouts, CORS, and
 * authentication, and maps routes to their handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the API routes.
func NewRouter(h *Handler, authCfg AuthConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "OK",
			"message": "Subscription Tracker API is running",
		})
	})

	// Protected routes that require an authenticated owner
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authCfg))

		r.Route("/api/subscriptions", func(r chi.Router) {
			r.Get("/", h.handleListSubscriptions)
			r.Post("/", h.handleCreateSubscription)
			r.Get("/stats", h.handleGetStats)
			r.Get("/{id}", h.handleGetSubscription)
			r.Put("/{id}", h.handleUpdateSubscription)
			r.Delete("/{id}", h.handleDeleteSubscription)
		})

		r.Post("/api/users/change-password", h.handleChangePassword)
	})

	return r
}
