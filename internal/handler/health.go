package handler

import (
	"net/http"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

// StatusSource is what the ops endpoint reports on.
type StatusSource interface {
	Ready() error
	Protocol() string
	Window() model.RateWindow
}

// HealthHandler handles health and status endpoints.
type HealthHandler struct {
	source StatusSource
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(source StatusSource) *HealthHandler {
	return &HealthHandler{
		source: source,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.source.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

type statusResponse struct {
	Protocol string           `json:"protocol"`
	Window   model.RateWindow `json:"window"`
}

// Status handles GET /status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Protocol: h.source.Protocol(),
		Window:   h.source.Window(),
	})
}
