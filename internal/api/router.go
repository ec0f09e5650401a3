package api

import (
	"net/http"
	"trip-route-service/internal/api/handlers"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/services"

	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(store *services.SessionStore, repo ports.StopRepository, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	sessions := &handlers.SessionHandler{
		Store: store,
		Repo:  repo,
		Log:   log,
	}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /sessions", sessions.Create)
	mux.HandleFunc("GET /sessions/{id}", sessions.Get)
	mux.HandleFunc("DELETE /sessions/{id}", sessions.Delete)
	mux.HandleFunc("PUT /sessions/{id}/stops", sessions.ReloadStops)
	mux.HandleFunc("POST /sessions/{id}/stops/{stopID}/toggle", sessions.Toggle)
	mux.HandleFunc("GET /sessions/{id}/route.geojson", sessions.RouteGeoJSON)
	mux.HandleFunc("GET /sessions/{id}/route.kml", sessions.RouteKML)
	mux.HandleFunc("GET /sessions/{id}/navigation", sessions.Navigation)
	mux.HandleFunc("GET /sessions/{id}/suggested-order", sessions.SuggestedOrder)
	mux.HandleFunc("GET /sessions/{id}/stream", sessions.Stream)

	return requestIDMiddleware(loggingMiddleware(mux, log))
}
