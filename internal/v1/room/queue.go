package room

import (
	"strings"

	"github.com/google/uuid"
)

// Participant is one entry in the speak queue.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RequestedAt int64  `json:"requestedAt"`
}

// queueIndexLocked returns the index of the first queue entry whose name
// matches case-insensitively, or -1. Caller must hold r.mu.
func (r *Room) queueIndexLocked(name string) int {
	for i, p := range r.queue {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// AddToQueue appends a speaker request. The name is trimmed first; requests
// matching the current speaker or an already queued name case-insensitively
// are ignored, so a name appears at most once across queue and floor.
func (r *Room) AddToQueue(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && strings.EqualFold(r.current.Entry.Name, name) {
		return
	}
	if r.queueIndexLocked(name) >= 0 {
		return
	}
	r.queue = append(r.queue, Participant{
		ID:          uuid.NewString(),
		Name:        name,
		RequestedAt: r.nowSec(),
	})
}

// Withdraw removes the first queue entry matching name case-insensitively.
// The current speaker is never affected.
func (r *Room) Withdraw(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.queueIndexLocked(name); idx >= 0 {
		r.queue = append(r.queue[:idx], r.queue[idx+1:]...)
	}
}

// NextParticipant hands the floor to the head of the queue. Chair-only.
// The previous speaker is dropped unconditionally; with an empty queue the
// floor is simply cleared.
func (r *Room) NextParticipant(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}

	r.current = nil
	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.current = &Current{
			Entry:        next,
			StartedAtSec: r.nowSec(),
			ElapsedMs:    0,
			Running:      true,
			LimitSec:     r.defaultLimitSec,
		}
	}
	return nil
}
