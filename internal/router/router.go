// Package router sets up all HTTP routes and middleware chains for the
// PulsePost server. The API and admin groups sit behind bearer-token
// authentication; health and metrics stay open for probes and scrapers.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pulsepost/internal/handlers"
	"pulsepost/internal/metrics"
	"pulsepost/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, adminTokenHash string) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Probes and scrapers, no auth.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Manual cycles and exports are expensive; keep callers honest.
	expensive := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.BearerAuth(adminTokenHash))

		r.Get("/status", api.Status)
		r.With(expensive.Middleware).Post("/cycle", api.RunCycle)
		r.Put("/schedule", api.UpdateSchedule)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", api.ListHistory)
			r.With(expensive.Middleware).Get("/export", api.ExportHistory)
			r.Delete("/", api.ClearHistory)
		})

		r.Route("/topics", func(r chi.Router) {
			r.Get("/", api.ListTopics)
			r.Patch("/{id}", api.UpdateTopic)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BearerAuth(adminTokenHash))

		r.Get("/otp/qr", api.OTPQR)
	})

	return r
}

// healthHandler responds to liveness probes.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
