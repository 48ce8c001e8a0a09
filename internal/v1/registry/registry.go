// Package registry owns the process-wide mapping from room code to live
// room, bounded by a capacity with oldest-first eviction, plus the binding
// of websocket sessions to the room they joined. Rooms are only ever created
// through the registry; commands addressed to unknown codes fail with
// ErrRoomNotFound instead of creating anything.
package registry

import (
	"container/list"
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/room"
)

// ErrRoomNotFound is returned for lookups of unknown or evicted codes.
var ErrRoomNotFound = errors.New("room not found")

// DefaultMaxRooms bounds the registry when no explicit capacity is given.
const DefaultMaxRooms = 2500

// Registry is safe for concurrent use. One mutex guards the room map, the
// eviction order and the session index so removals stay consistent across
// all three.
type Registry struct {
	mu       sync.RWMutex
	maxRooms int

	// rooms indexes the eviction order list by code. The list holds
	// *room.Room front-to-back in creation order; creation time is
	// monotonic, so the front is always an oldest room and second-precision
	// creation ties are broken deterministically by insertion.
	rooms map[string]*list.Element
	order *list.List

	// sessions maps a session id to the code of the room it joined.
	sessions map[string]string
}

// New creates a registry bounded at maxRooms. Values below 1 fall back to
// DefaultMaxRooms.
func New(maxRooms int) *Registry {
	if maxRooms < 1 {
		maxRooms = DefaultMaxRooms
	}
	return &Registry{
		maxRooms: maxRooms,
		rooms:    make(map[string]*list.Element),
		order:    list.New(),
		sessions: make(map[string]string),
	}
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.order.Len()
}

// Exists reports whether a room with the given canonical code is live.
func (reg *Registry) Exists(code string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.rooms[code]
	return ok
}

// Find returns the room for code, or nil. It never creates.
func (reg *Registry) Find(code string) *room.Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if elem, ok := reg.rooms[code]; ok {
		return elem.Value.(*room.Room)
	}
	return nil
}

// FindOrFail returns the room for code or ErrRoomNotFound.
func (reg *Registry) FindOrFail(code string) (*room.Room, error) {
	if r := reg.Find(code); r != nil {
		return r, nil
	}
	return nil, ErrRoomNotFound
}

// Create returns the room for code, inserting a fresh one when absent. At
// capacity the oldest room is evicted first, together with every session
// binding that pointed at it; Create itself never fails.
func (reg *Registry) Create(code string) *room.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.createLocked(code)
}

// CreateFresh mints a code that is not in use and inserts a room for it.
// Generation and insertion happen under one lock, so two concurrent calls
// can never claim the same code.
func (reg *Registry) CreateFresh() *room.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := GenerateCode()
	for reg.rooms[code] != nil {
		code = GenerateCode()
	}
	return reg.createLocked(code)
}

func (reg *Registry) createLocked(code string) *room.Room {
	if elem, ok := reg.rooms[code]; ok {
		return elem.Value.(*room.Room)
	}

	if reg.order.Len() >= reg.maxRooms {
		reg.evictOldestLocked()
	}

	r := room.New(code)
	reg.rooms[code] = reg.order.PushBack(r)

	metrics.RoomsCreated.Inc()
	metrics.RoomsActive.Set(float64(reg.order.Len()))
	return r
}

// evictOldestLocked removes exactly one room, the front of the order list,
// and purges its session bindings. Caller must hold reg.mu.
func (reg *Registry) evictOldestLocked() {
	front := reg.order.Front()
	if front == nil {
		return
	}
	victim := front.Value.(*room.Room)
	reg.order.Remove(front)
	delete(reg.rooms, victim.Code())
	reg.purgeSessionsLocked(victim.Code())

	metrics.RoomsEvicted.Inc()
	logging.Warn(context.Background(), "Registry at capacity, evicted oldest room",
		zap.String("roomCode", victim.Code()),
		zap.Int64("createdAtSec", victim.CreatedAtSec()),
		zap.Int("maxRooms", reg.maxRooms),
	)
}

// purgeSessionsLocked drops every binding pointing at code. Caller must
// hold reg.mu.
func (reg *Registry) purgeSessionsLocked(code string) {
	for sid, c := range reg.sessions {
		if c == code {
			delete(reg.sessions, sid)
		}
	}
}

// Destroy removes the room, its eviction order entry and every session
// binding to it. Unknown codes are a no-op.
func (reg *Registry) Destroy(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	elem, ok := reg.rooms[code]
	if !ok {
		return
	}
	reg.order.Remove(elem)
	delete(reg.rooms, code)
	reg.purgeSessionsLocked(code)

	metrics.RoomsDestroyed.Inc()
	metrics.RoomsActive.Set(float64(reg.order.Len()))
}

// BindSession records the room a session joined, overwriting any previous
// binding for the same session.
func (reg *Registry) BindSession(sessionID, code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.sessions[sessionID] = code
}

// UnbindSession drops the session's binding if present.
func (reg *Registry) UnbindSession(sessionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.sessions, sessionID)
}

// RoomOfSession resolves the room a session is bound to. A binding whose
// room has been evicted or destroyed is purged on the spot and nil is
// returned.
func (reg *Registry) RoomOfSession(sessionID string) *room.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.sessions[sessionID]
	if !ok {
		return nil
	}
	elem, ok := reg.rooms[code]
	if !ok {
		delete(reg.sessions, sessionID)
		return nil
	}
	return elem.Value.(*room.Room)
}

// SessionsOf lists every session currently bound to code.
func (reg *Registry) SessionsOf(code string) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var out []string
	for sid, c := range reg.sessions {
		if c == code {
			out = append(out, sid)
		}
	}
	return out
}
