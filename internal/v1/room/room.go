// Package room implements the per-meeting state machine: the speak queue,
// the current speaker and their timer, the chair role, the poll lifecycle,
// and the room configuration. Every mutation runs under the room's lock;
// methods with the *Locked suffix require the caller to hold it.
//
// The aggregate holds no transport concerns. Callers resolve authorization
// failures from the returned errors and decide what to broadcast.
package room

import (
	"errors"
	"strings"
	"sync"

	"k8s.io/utils/clock"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/meta"
)

var (
	// ErrChairAccessDenied is returned when a chair-only operation is
	// attempted by a session that does not hold the chair.
	ErrChairAccessDenied = errors.New("chair access required for this operation")

	// ErrChairOccupied is returned by AssumeChair while another session
	// holds the chair.
	ErrChairOccupied = errors.New("chair role is already occupied")
)

// Speaker limit bounds in seconds. UpdateLimit clamps into this range.
const (
	MinLimitSec     = 10
	MaxLimitSec     = 3600
	DefaultLimitSec = 180
)

// Config is the chair-editable room configuration. Every field is optional;
// nil means unset. It serializes into the snapshot as-is.
type Config struct {
	Topic               *string                   `json:"topic"`
	MeetingGoal         *meta.MeetingGoal         `json:"meetingGoal"`
	ParticipationFormat *meta.ParticipationFormat `json:"participationFormat"`
	DecisionRule        *meta.DecisionRule        `json:"decisionRule"`
	Deliverable         *meta.Deliverable         `json:"deliverable"`
}

// Room is the authoritative state of one meeting.
type Room struct {
	code         string
	createdAtSec int64

	mu sync.RWMutex

	queue           []Participant
	current         *Current
	defaultLimitSec int
	chairSessionID  string

	config Config

	poll pollState

	clock clock.PassiveClock
}

// New creates a room for the given canonical code. The creation time doubles
// as the meeting start in snapshots and as the eviction order key.
func New(code string) *Room {
	return newWithClock(code, clock.RealClock{})
}

func newWithClock(code string, c clock.PassiveClock) *Room {
	return &Room{
		code:            code,
		createdAtSec:    c.Now().Unix(),
		defaultLimitSec: DefaultLimitSec,
		clock:           c,
	}
}

// Code returns the canonical room code.
func (r *Room) Code() string {
	return r.code
}

// CreatedAtSec returns the creation time in epoch seconds.
func (r *Room) CreatedAtSec() int64 {
	return r.createdAtSec
}

func (r *Room) nowSec() int64 {
	return r.clock.Now().Unix()
}

// isChairSessionLocked reports whether sessionID currently holds the chair.
// Caller must hold r.mu.
func (r *Room) isChairSessionLocked(sessionID string) bool {
	return sessionID != "" && sessionID == r.chairSessionID
}

// requireChairLocked gates chair-only operations. Caller must hold r.mu.
func (r *Room) requireChairLocked(sessionID string) error {
	if !r.isChairSessionLocked(sessionID) {
		return ErrChairAccessDenied
	}
	return nil
}

// IsChairSession reports whether sessionID currently holds the chair.
func (r *Room) IsChairSession(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isChairSessionLocked(sessionID)
}

// HasChair reports whether any session holds the chair.
func (r *Room) HasChair() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chairSessionID != ""
}

// AssumeChair claims the chair for sessionID. Re-claiming by the current
// holder succeeds as a no-op; a claim while another session holds the chair
// returns ErrChairOccupied.
func (r *Room) AssumeChair(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isChairSessionLocked(sessionID) {
		return nil
	}
	if r.chairSessionID != "" {
		return ErrChairOccupied
	}
	r.chairSessionID = sessionID
	return nil
}

// ReleaseChair clears the chair only when sessionID currently holds it.
func (r *Room) ReleaseChair(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isChairSessionLocked(sessionID) {
		r.chairSessionID = ""
	}
}

// UpdateConfig replaces the room configuration. Chair-only. All five fields
// are set at once; nil fields clear their slot.
func (r *Room) UpdateConfig(sessionID string, cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}
	if cfg.Topic != nil {
		trimmed := strings.TrimSpace(*cfg.Topic)
		cfg.Topic = &trimmed
	}
	r.config = cfg
	return nil
}
