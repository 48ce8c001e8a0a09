package meeting

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/registry"
)

// Static pages the deep-link shims redirect to. Serving the pages themselves
// is the front-end's concern; the shims only normalize the code.
const (
	chairPage       = "/chair.html"
	participantPage = "/participant.html"
)

// RoomResponse answers both room creation and existence probes.
type RoomResponse struct {
	RoomCode string `json:"roomCode"`
	Exists   bool   `json:"exists"`
}

// RoomsHandler serves the REST room surface. Rooms are only ever minted
// here; the websocket side never creates one as a side effect.
type RoomsHandler struct {
	registry *registry.Registry
}

// NewRoomsHandler creates the REST handler for the given registry.
func NewRoomsHandler(reg *registry.Registry) *RoomsHandler {
	return &RoomsHandler{registry: reg}
}

// CreateRoom handles POST /rooms: mints a fresh unique code and inserts the
// room, evicting the oldest one when the registry is full.
func (h *RoomsHandler) CreateRoom(c *gin.Context) {
	r := h.registry.CreateFresh()
	logging.Info(c.Request.Context(), "Room created", zap.String("roomCode", r.Code()))
	c.JSON(http.StatusOK, RoomResponse{RoomCode: r.Code(), Exists: true})
}

// ProbeRoom handles GET /rooms/:code: reports whether the normalized code
// resolves to a live room. Probing never creates.
func (h *RoomsHandler) ProbeRoom(c *gin.Context) {
	code := registry.NormalizeCode(c.Param("code"))
	c.JSON(http.StatusOK, RoomResponse{RoomCode: code, Exists: h.registry.Exists(code)})
}

// ChairRedirect handles GET /chair/:code with a 302 to the chair view.
func (h *RoomsHandler) ChairRedirect(c *gin.Context) {
	h.redirect(c, chairPage)
}

// ParticipantRedirect handles GET /room/:code with a 302 to the participant
// view.
func (h *RoomsHandler) ParticipantRedirect(c *gin.Context) {
	h.redirect(c, participantPage)
}

func (h *RoomsHandler) redirect(c *gin.Context, page string) {
	code := registry.NormalizeCode(c.Param("code"))
	query := url.Values{"room": {code}}
	c.Redirect(http.StatusFound, page+"?"+query.Encode())
}
