package routes

import (
	"net/http"

	"clementus360/coaching-portal/handlers"
)

// RegisterSessionRoutes registers all session-related routes
func RegisterSessionRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /sessions", h.GetSessions)
	mux.HandleFunc("POST /sessions", h.CreateSession)
	mux.HandleFunc("PATCH /sessions/{sessionId}", h.UpdateSession)
	mux.HandleFunc("DELETE /sessions/{sessionId}", h.DeleteSession)
}
