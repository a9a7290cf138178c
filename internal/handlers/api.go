// internal/handlers/api.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quattroplay/quattro/internal/database"
)

// leaderboardLimit caps the number of aggregated entries returned.
const leaderboardLimit = 10

// HealthHandler is a thin liveness probe reporting the active room count.
func HealthHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "ok",
			"activeRooms": srv.Rooms.ActiveRooms(),
		})
	}
}

// LeaderboardHandler aggregates historical game results by win count.
// Responds 503 while no database pool is connected; gameplay endpoints stay
// up regardless.
func LeaderboardHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if database.DB == nil {
			http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
			return
		}
		entries, err := database.TopWinners(r.Context(), leaderboardLimit)
		if err != nil {
			srv.Logger.Errorf("Leaderboard query failed: %v", err)
			http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []database.LeaderboardEntry{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
