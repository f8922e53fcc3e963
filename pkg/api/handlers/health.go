package handlers

import (
	"net/http"

	"github.com/jdesfossez/gt1000ctl/internal/facade"
	"github.com/jdesfossez/gt1000ctl/pkg/api/response"
)

// HealthHandler handles liveness and readiness probes.
//
// Liveness always succeeds once the HTTP server is answering. Readiness
// additionally requires that the Facade completed its handshake and knows
// the Device's identity.
type HealthHandler struct {
	facade *facade.Facade
}

// NewHealthHandler creates a new health handler over an already-open facade.
func NewHealthHandler(f *facade.Facade) *HealthHandler {
	return &HealthHandler{facade: f}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Healthy(map[string]string{"service": "gt1000ctl"}))
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	identity := h.facade.Identity()
	if identity.Model == "" {
		response.JSON(w, http.StatusServiceUnavailable, response.Unhealthy("device identity not yet resolved"))
		return
	}
	response.JSON(w, http.StatusOK, response.Healthy(map[string]any{
		"model":     identity.Model,
		"device_id": identity.DeviceID,
	}))
}
