package api

import (
	"net/http"

	"skillboard/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultOrigins are allowed when no CORS origins are configured
var DefaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// NewRouter builds the chi router with middleware and all routes
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(h.logger))
	r.Use(middleware.Recoverer)

	// CORS for the JSON API
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h.RegisterRoutes(r)
	return r
}
