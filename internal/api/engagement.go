package api

import (
	"net/http"

	"github.com/habitflow/habitflow/internal/app/engagement"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Summary())
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Activity())
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engagement.Performance(s.store.Snapshot().Tasks))
}

func (s *Server) handleRewards(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_points": snap.TotalPoints,
		"unlocked":     snap.UnlockedCount(),
		"rewards":      snap.Rewards,
	})
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	points := s.store.Snapshot().TotalPoints
	writeJSON(w, http.StatusOK, map[string]any{
		"level":          engagement.LevelForPoints(points),
		"points_to_next": engagement.PointsToNextLevel(points),
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"quote": s.store.Snapshot().Quote})
}

func (s *Server) handleRefreshQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"quote": s.store.RefreshQuote().Quote})
}

// handleRefresh recomputes streaks against today, e.g. after midnight.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Refresh())
}
