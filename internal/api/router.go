package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spotly-app/spotly-be/internal/api/handlers"
	"github.com/spotly-app/spotly-be/internal/auth"
	"github.com/spotly-app/spotly-be/internal/services"
	"github.com/spotly-app/spotly-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router. Paths match what the
// SPA calls, with no version prefix.
func NewRouter(hub *websocket.Hub, userService services.UserServiceProvider, locationService services.LocationServiceProvider, eventService services.EventServiceProvider, allowedOrigin string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	locationHandler := handlers.NewLocationHandler(locationService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Public endpoints
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)

	// Push channel; the client announces its identity in-band.
	r.Get("/ws", wsHandler.Serve)

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware(userService))

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", locationHandler.GetRecent)
			r.Get("/available", locationHandler.GetAvailable)
			r.Post("/offer", locationHandler.Offer)
			r.Post("/claim", locationHandler.Claim)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/username/{id}", userHandler.GetUsername)
			r.Get("/tokens", userHandler.GetTokens)
			r.Get("/info", userHandler.GetInfo)
			r.Put("/change-password", userHandler.ChangePassword)
		})

		r.Get("/events", eventHandler.GetRecent)
	})

	return r
}
