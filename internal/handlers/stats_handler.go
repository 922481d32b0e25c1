package handlers

import (
	"net/http"

	"github.com/Dias221467/habit_tracker/internal/services"
)

type StatsHandler struct {
	Service *services.StatsService
}

func NewStatsHandler(service *services.StatsService) *StatsHandler {
	return &StatsHandler{Service: service}
}

// GET /stats
func (h *StatsHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.GetStats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
