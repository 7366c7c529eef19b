package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/notes-api/internal/api/handlers"
	"github.com/dom/notes-api/internal/api/middleware"
	"github.com/dom/notes-api/internal/config"
	"github.com/dom/notes-api/internal/metrics"
	"github.com/dom/notes-api/internal/service"
	"github.com/dom/notes-api/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// NewRouter builds the HTTP surface. Metrics are registered on registry and
// served from it at /metrics.
func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	recorder := metrics.NewCollector(registry)

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.NewCORSMiddleware(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler(registry))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, hub, recorder, logger)
	userHandler := handlers.NewUserHandler(services.Auth, logger)
	noteHandler := handlers.NewNoteHandler(services.Note, recorder, logger)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Sessions, services.Tokens, cfg.CORSAllowedOrigins, recorder, logger)

	// Public auth routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// Logout only needs the token itself
	r.With(middleware.RequireToken(logger)).Post("/logout", authHandler.Logout)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(services.Sessions, recorder, logger))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", userHandler.Me)
			r.Put("/update", userHandler.Update)
		})
		r.Get("/user/profile", userHandler.Profile)

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)
			r.Get("/{id}", noteHandler.Get)
			r.Put("/{id}", noteHandler.Update)
			r.Delete("/{id}", noteHandler.Delete)
		})
	})

	// WebSocket endpoint
	r.Get("/ws", wsHandler.Handle)

	return r
}
