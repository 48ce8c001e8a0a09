package meeting

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/pubsub"
)

// sendBufferSize bounds the per-connection outbox. A subscriber that cannot
// drain snapshots this far behind has its frames dropped, never the room.
const sendBufferSize = 64

// writeWait is the deadline for a single websocket write.
const writeWait = 10 * time.Second

// wsConnection is the slice of *websocket.Conn the client uses, extracted so
// tests can drive the pumps without a network.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetWriteDeadline(t time.Time) error
}

// Client is one websocket session. The session id is minted at upgrade time
// and identifies the connection for its whole lifetime; the chair capability
// and poll ballots are keyed by it.
type Client struct {
	sessionID string
	conn      wsConnection
	hub       *Hub

	mu     sync.RWMutex
	closed bool
	// subs holds broker subscriptions per room code so a destroyed room's
	// topics can be detached without touching the connection.
	subs map[string][]*pubsub.Subscription

	closeOnce sync.Once
	send      chan []byte
}

func newClient(sessionID string, conn wsConnection, hub *Hub) *Client {
	return &Client{
		sessionID: sessionID,
		conn:      conn,
		hub:       hub,
		subs:      make(map[string][]*pubsub.Subscription),
		send:      make(chan []byte, sendBufferSize),
	}
}

// SessionID returns the server-issued session id.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Send enqueues a pre-serialized frame. Frames to a full or closed outbox are
// dropped so one slow consumer never stalls the room.
func (c *Client) Send(frame []byte) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			logging.Warn(context.Background(), "Recovered from send on closed session",
				zap.String("sessionId", c.sessionID), zap.Any("panic", r))
		}
	}()

	select {
	case c.send <- frame:
	default:
		logging.Warn(context.Background(), "Session outbox full, dropping frame",
			zap.String("sessionId", c.sessionID))
	}
}

// SendMessage marshals and enqueues a targeted envelope.
func (c *Client) SendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error(context.Background(), "Failed to marshal targeted message",
			zap.String("sessionId", c.sessionID), zap.Error(err))
		return
	}
	c.Send(data)
}

// Disconnect closes the outbox, which drives the writePump to send a close
// frame and drop the connection. Safe to call more than once.
func (c *Client) Disconnect() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.send)
	})
}

// subscribeRoom attaches the session to the room's fan-out topics. Calling it
// again for the same code is a no-op, so join and assumeChair can both bind.
func (c *Client) subscribeRoom(broker *pubsub.Broker, code string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.subs[code]; ok {
		c.mu.Unlock()
		return
	}
	// Reserve the slot first: Subscribe must run outside c.mu because the
	// broker invokes handlers (which read c.mu) under its own lock.
	c.subs[code] = nil
	c.mu.Unlock()

	topics := []string{StateTopic(code), DestroyedTopic(code), ErrorTopic(code)}
	subs := make([]*pubsub.Subscription, 0, len(topics))
	for _, topic := range topics {
		if sub := broker.Subscribe(topic, c.Send); sub != nil {
			subs = append(subs, sub)
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		return
	}
	c.subs[code] = subs
	c.mu.Unlock()
}

// unsubscribeRoom detaches the session from one room's topics.
func (c *Client) unsubscribeRoom(code string) {
	c.mu.Lock()
	subs := c.subs[code]
	delete(c.subs, code)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// unsubscribeAll detaches the session from every topic it follows.
func (c *Client) unsubscribeAll() {
	c.mu.Lock()
	all := c.subs
	c.subs = make(map[string][]*pubsub.Subscription)
	c.mu.Unlock()

	for _, subs := range all {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}

// readPump feeds incoming frames to the dispatcher until the connection
// drops, then fires the single disconnect notification.
func (c *Client) readPump() {
	defer func() {
		c.hub.handleDisconnect(c)
		c.conn.Close()
		metrics.DecConnection()
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		ctx := context.WithValue(context.Background(), logging.SessionIDKey, c.sessionID)
		c.hub.Dispatch(ctx, c, data)
	}
}

// writePump drains the outbox onto the wire. When the outbox closes it sends
// a close frame and returns, which also unblocks the readPump.
func (c *Client) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			logging.Error(context.Background(), "error writing frame",
				zap.String("sessionId", c.sessionID), zap.Error(err))
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
