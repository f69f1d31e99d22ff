package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// System status (component health, uptime, counts)
		r.Get("/system", s.handleSystemStatus)

		// Twilight sensor endpoints
		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Post("/", s.handleCreateSensor)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSensor)
				r.Patch("/", s.handleUpdateSensor)
				r.Delete("/", s.handleDeleteSensor)
				r.Get("/schedule", s.handleGetSensorSchedule)
			})
		})

		// Position source endpoints
		r.Route("/positions", func(r chi.Router) {
			r.Get("/", s.handleListPositions)
			r.Post("/", s.handleCreatePosition)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPosition)
				r.Patch("/", s.handleUpdatePosition)
				r.Delete("/", s.handleDeletePosition)
			})
		})

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
