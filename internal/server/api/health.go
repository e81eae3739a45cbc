package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

// Health сообщает о состоянии сервиса и доступности хранилища.
//
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} models.HealthResponse
// @Failure      503 {object} models.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	if err := h.Svc.Health.Check(r.Context()); err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		WriteJSON(w, http.StatusServiceUnavailable, models.HealthResponse{Status: "unavailable", Timestamp: now})
		return
	}
	WriteJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Timestamp: now})
}
