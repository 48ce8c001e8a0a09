package meta

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogResponse is the payload shape shared by every metadata endpoint.
type CatalogResponse struct {
	Version string  `json:"version"`
	Data    []Entry `json:"data"`
}

// Handler serves the metadata catalog.
type Handler struct{}

// NewHandler creates a new metadata handler.
func NewHandler() *Handler {
	return &Handler{}
}

// MeetingGoals handles GET /metadata/meeting-goals.
func (h *Handler) MeetingGoals(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogResponse{Version: CatalogVersion, Data: MeetingGoals})
}

// ParticipationFormats handles GET /metadata/participation-formats.
func (h *Handler) ParticipationFormats(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogResponse{Version: CatalogVersion, Data: ParticipationFormats})
}

// DecisionRules handles GET /metadata/decision-rules.
func (h *Handler) DecisionRules(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogResponse{Version: CatalogVersion, Data: DecisionRules})
}

// Deliverables handles GET /metadata/deliverables.
func (h *Handler) Deliverables(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogResponse{Version: CatalogVersion, Data: Deliverables})
}
