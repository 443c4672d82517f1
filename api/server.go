/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a local dashboard

ROUTE GROUPS:
  /api/status/*      In/out status queries
  /api/observe       Gate observations
  /api/events        Explicit events
  /api/identities/*  Enrollment management
  /api/report/*      Monthly aggregates and export

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/attendanced/serve.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/status", func(r chi.Router) {
			r.Get("/", h.ListStatus)
			r.Get("/{name}", h.GetStatus)
		})

		r.Post("/observe", h.Observe)
		r.Post("/events", h.RecordEvent)
		r.Post("/checkout/{name}", h.Checkout)

		r.Route("/identities", func(r chi.Router) {
			r.Get("/", h.ListIdentities)
			r.Delete("/{name}", h.RemoveIdentity)
		})

		r.Get("/report/{month}", h.MonthlyReport)
		r.Get("/export", h.ExportCSV)
		r.Get("/journal/today", h.JournalToday)
	})

	return r
}
