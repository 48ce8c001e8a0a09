package meeting

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/pubsub"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/registry"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/room"
)

// mockConn implements wsConnection without a network. Reads are fed through
// a channel; writes are captured for inspection.
type mockConn struct {
	mu     sync.Mutex
	writes [][]byte
	closed bool

	reads chan readFrame
}

type readFrame struct {
	messageType int
	data        []byte
	err         error
}

func newMockConn() *mockConn {
	return &mockConn{reads: make(chan readFrame, 16)}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	frame, ok := <-m.reads
	if !ok {
		return 0, nil, errConnClosed
	}
	return frame.messageType, frame.data, frame.err
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errConnClosed
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.writes = append(m.writes, buf)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) SetWriteDeadline(time.Time) error { return nil }

func (m *mockConn) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

var errConnClosed = &websocketClosedError{}

type websocketClosedError struct{}

func (*websocketClosedError) Error() string { return "connection closed" }

// newTestHub builds a hub around a fresh registry and broker.
func newTestHub(t testing.TB, maxRooms int) (*Hub, *registry.Registry) {
	t.Helper()
	reg := registry.New(maxRooms)
	return NewHub(reg, pubsub.NewBroker(), []string{"http://localhost:3000"}, "/landing.html"), reg
}

// connect registers a dispatcher-only client: no pumps, frames pile up in the
// outbox for the test to drain.
func connect(t *testing.T, h *Hub, sessionID string) *Client {
	t.Helper()
	c := newClient(sessionID, newMockConn(), h)
	h.mu.Lock()
	h.clients[sessionID] = c
	h.mu.Unlock()
	return c
}

// command marshals a client frame.
func command(t *testing.T, cmdType string, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(Message{Type: cmdType, Payload: raw})
	require.NoError(t, err)
	return data
}

// drain empties the client outbox into decoded envelopes.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case frame := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(frame, &msg))
			out = append(out, msg)
		default:
			return out
		}
	}
}

// states filters the state frames out of a drained batch.
func states(t *testing.T, msgs []Message) []room.State {
	t.Helper()
	var out []room.State
	for _, msg := range msgs {
		if msg.Type != EventState {
			continue
		}
		var s room.State
		require.NoError(t, json.Unmarshal(msg.Payload, &s))
		out = append(out, s)
	}
	return out
}

// lastState returns the final state frame of a drained batch.
func lastState(t *testing.T, c *Client) room.State {
	t.Helper()
	all := states(t, drain(t, c))
	require.NotEmpty(t, all, "expected at least one state frame")
	return all[len(all)-1]
}

// errorsOf filters the error envelopes out of a drained batch.
func errorsOf(t *testing.T, msgs []Message) []ErrorPayload {
	t.Helper()
	var out []ErrorPayload
	for _, msg := range msgs {
		if msg.Type != EventError {
			continue
		}
		var e ErrorPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &e))
		out = append(out, e)
	}
	return out
}

// joinRoom drives a join command and discards the resulting frames.
func joinRoom(t *testing.T, h *Hub, c *Client, code, name string) {
	t.Helper()
	h.Dispatch(t.Context(), c, command(t, CmdJoin, JoinPayload{RoomCode: code, Name: name}))
	msgs := drain(t, c)
	require.Empty(t, errorsOf(t, msgs), "join should not fail")
}
