package meeting

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/pubsub"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/registry"
)

// Hub owns every live websocket session and ties the dispatcher to the room
// registry and the fan-out broker.
type Hub struct {
	registry   *registry.Registry
	broker     *pubsub.Broker
	landingURL string

	mu      sync.Mutex
	clients map[string]*Client

	upgrader websocket.Upgrader
}

// NewHub wires the session layer. allowedOrigins gates the websocket
// handshake; requests without an Origin header (non-browser clients) pass.
func NewHub(reg *registry.Registry, broker *pubsub.Broker, allowedOrigins []string, landingURL string) *Hub {
	h := &Hub{
		registry:   reg,
		broker:     broker,
		landingURL: landingURL,
		clients:    make(map[string]*Client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

// ServeWs upgrades the request and starts the session pumps. The session id
// is minted here and never changes for the life of the connection.
func (h *Hub) ServeWs(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn(c.Request.Context(), "WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn, h)

	h.mu.Lock()
	h.clients[client.sessionID] = client
	h.mu.Unlock()

	metrics.IncConnection()
	logging.Info(c.Request.Context(), "Session connected", zap.String("sessionId", client.sessionID))

	go client.writePump()
	go client.readPump()
}

// handleDisconnect runs exactly once per connection, from the readPump exit
// path. A disconnecting chair releases the role and the room's subscribers
// see the vacancy in a fresh snapshot.
func (h *Hub) handleDisconnect(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.sessionID)
	h.mu.Unlock()

	if r := h.registry.RoomOfSession(c.sessionID); r != nil && r.IsChairSession(c.sessionID) {
		r.ReleaseChair(c.sessionID)
		h.registry.UnbindSession(c.sessionID)
		h.Broadcast(r.Code())
	} else {
		h.registry.UnbindSession(c.sessionID)
	}

	c.Disconnect()
	c.unsubscribeAll()

	logging.Info(context.Background(), "Session disconnected", zap.String("sessionId", c.sessionID))
}

// detachRoom removes the listed sessions from a destroyed room's topics. The
// connections stay open; their next command simply finds no room.
func (h *Hub) detachRoom(code string, sessionIDs []string) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(sessionIDs))
	for _, sid := range sessionIDs {
		if c, ok := h.clients[sid]; ok {
			clients = append(clients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.unsubscribeRoom(code)
	}
}

// Shutdown closes every connection and the broker. Room state is volatile
// and simply dropped with the process.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Disconnect()
	}
	h.broker.Close()

	logging.Info(ctx, "Hub shut down", zap.Int("connections", len(clients)))
	return nil
}
