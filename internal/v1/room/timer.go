package room

// Current describes the speaker holding the floor. ElapsedMs accumulates
// completed running intervals; StartedAtSec marks when the present running
// interval began, so live elapsed time is
// elapsedMs + (now-startedAtSec)*1000 while running.
type Current struct {
	Entry        Participant `json:"entry"`
	StartedAtSec int64       `json:"startedAtSec"`
	ElapsedMs    int         `json:"elapsedMs"`
	Running      bool        `json:"running"`
	LimitSec     int         `json:"limitSec"`
}

// StartTimer resumes the speech timer. Chair-only. No-op while already
// running or without a current speaker; accumulated elapsed time is kept.
func (r *Room) StartTimer(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}
	if r.current == nil || r.current.Running {
		return nil
	}
	r.current.StartedAtSec = r.nowSec()
	r.current.Running = true
	return nil
}

// PauseTimer halts the speech timer, folding the running interval into
// ElapsedMs. Chair-only. No-op while stopped or without a current speaker.
func (r *Room) PauseTimer(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}
	if r.current == nil || !r.current.Running {
		return nil
	}
	r.current.ElapsedMs += int((r.nowSec() - r.current.StartedAtSec) * 1000)
	r.current.Running = false
	return nil
}

// ResetTimer restarts the timer from zero, running, keeping the speaker and
// their limit. Chair-only. No-op without a current speaker.
func (r *Room) ResetTimer(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}
	if r.current == nil {
		return nil
	}
	r.current.StartedAtSec = r.nowSec()
	r.current.ElapsedMs = 0
	r.current.Running = true
	return nil
}

// UpdateLimit sets the default per-speaker limit, clamped to
// [MinLimitSec, MaxLimitSec]. Chair-only. A live speaker picks up the new
// limit immediately; their elapsed time and running state are untouched.
func (r *Room) UpdateLimit(sessionID string, seconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}

	if seconds < MinLimitSec {
		seconds = MinLimitSec
	}
	if seconds > MaxLimitSec {
		seconds = MaxLimitSec
	}

	r.defaultLimitSec = seconds
	if r.current != nil {
		r.current.LimitSec = seconds
	}
	return nil
}
