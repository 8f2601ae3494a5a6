// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/cardhall/internal/middleware"
)

// Routes registers every endpoint behind the request logger.
func (s *GameServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /games", s.CreateGameHandler)
	mux.HandleFunc("GET /games", s.ListGamesHandler)
	mux.HandleFunc("GET /games/{id}", s.GameStateHandler)
	mux.HandleFunc("POST /games/{id}/turns", s.SubmitTurnHandler)
	mux.HandleFunc("DELETE /games/{id}", s.DeleteGameHandler)
	mux.HandleFunc("GET /games/{id}/ws", s.GameWSHandler)

	mux.HandleFunc("GET /replays/{id}", s.ReplayHandler)
	mux.HandleFunc("GET /users/{id}/stats", s.UserStatsHandler)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.LogMiddleware(s.Logger)(mux)
}
