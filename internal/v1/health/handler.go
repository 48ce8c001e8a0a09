// Package health exposes the liveness and readiness probes plus the plain
// /healthz endpoint front-ends poll before joining a room.
package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/registry"
)

// Handler manages health check endpoints
type Handler struct {
	registry *registry.Registry
}

// NewHandler creates a new health check handler
func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{registry: reg}
}

// HealthzResponse is the minimal health payload.
type HealthzResponse struct {
	Status string `json:"status"`
}

// LivenessResponse represents the liveness probe response
type LivenessResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse represents the readiness probe response
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Healthz handles GET /healthz with a bare ok.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthzResponse{Status: "ok"})
}

// Liveness handles the liveness probe endpoint
// GET /health/live
// Returns 200 if the process is alive (no dependency checks)
func (h *Handler) Liveness(c *gin.Context) {
	response := LivenessResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, response)
}

// Readiness handles the readiness probe endpoint
// GET /health/ready
// The registry is the only stateful dependency; everything lives in process
// memory, so readiness is a wiring check rather than a connectivity one.
func (h *Handler) Readiness(c *gin.Context) {
	checks := make(map[string]string)
	status := "ready"
	statusCode := http.StatusOK

	if h.registry != nil {
		checks["registry"] = "healthy"
	} else {
		checks["registry"] = "unhealthy"
		status = "unavailable"
		statusCode = http.StatusServiceUnavailable
	}

	response := ReadinessResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.JSON(statusCode, response)
}
