package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"campusgate/internal/auth"
	"campusgate/internal/config"
)

// NewRouter wires application routes and middleware using chi. The request
// gate wraps every route; public paths pass through it untouched.
func NewRouter(cfg config.Config, authService *auth.Service, google googleVerifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	// Credentialed CORS requires explicit origins; a wildcard would make
	// browsers drop the session cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newRequestGate(authService, logger))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "campusgate",
			"status":  "ok",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	authHandler := NewAuthHandler(google, authService, cfg.FrontendURL, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/google", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)
		r.Get("/me", authHandler.Me)
		r.Post("/logout", authHandler.Logout)
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
