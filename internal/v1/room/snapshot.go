package room

// State is the immutable room view broadcast to subscribers after every
// mutation. Collections are defensive copies; the receiver may hold the
// value indefinitely.
type State struct {
	Queue           []Participant  `json:"queue"`
	Current         *Current       `json:"current"`
	MeetingStartSec int64          `json:"meetingStartSec"`
	DefaultLimitSec int            `json:"defaultLimitSec"`
	RoomCode        string         `json:"roomCode"`
	ChairOccupied   bool           `json:"chairOccupied"`
	PollState       *PollStateView `json:"pollState"`
	RoomConfig      Config         `json:"roomConfig"`
}

// PollStateView is the poll projection embedded in State. Which fields are
// populated depends on the lifecycle stage; see Snapshot.
type PollStateView struct {
	Question            string         `json:"question,omitempty"`
	PollType            PollType       `json:"pollType,omitempty"`
	Status              PollStatus     `json:"status,omitempty"`
	Results             map[string]int `json:"results"`
	TotalVotes          int            `json:"totalVotes"`
	LastResults         *PollResults   `json:"lastResults,omitempty"`
	Options             []string       `json:"options,omitempty"`
	VotesPerParticipant *int           `json:"votesPerParticipant,omitempty"`
}

// pollViewLocked derives the poll projection. Caller must hold r.mu.
//
// A live poll (ACTIVE or ENDED with its question) exposes the full view.
// After ClosePoll only status and lastResults remain. With no live poll but
// a surviving lastResults, just the results are exposed. A room that never
// ran a poll has no projection at all.
func (r *Room) pollViewLocked() *PollStateView {
	p := &r.poll

	if p.question != "" && (p.status == PollStatusActive || p.status == PollStatusEnded) {
		results := make(map[string]int, len(p.tallies))
		for k, v := range p.tallies {
			results[k] = v
		}
		votes := p.votesPerParticipant
		return &PollStateView{
			Question:            p.question,
			PollType:            p.pollType,
			Status:              p.status,
			Results:             results,
			TotalVotes:          p.totalVotes(),
			LastResults:         p.lastResults,
			Options:             append([]string(nil), p.options...),
			VotesPerParticipant: &votes,
		}
	}

	if p.status == PollStatusClosed && p.lastResults != nil {
		return &PollStateView{
			Status:      PollStatusClosed,
			Results:     map[string]int{},
			LastResults: p.lastResults,
		}
	}

	if p.lastResults != nil {
		return &PollStateView{
			Results:     map[string]int{},
			LastResults: p.lastResults,
		}
	}

	return nil
}

// Snapshot returns the authoritative view of the room.
func (r *Room) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	queue := make([]Participant, len(r.queue))
	copy(queue, r.queue)

	var current *Current
	if r.current != nil {
		c := *r.current
		current = &c
	}

	return State{
		Queue:           queue,
		Current:         current,
		MeetingStartSec: r.createdAtSec,
		DefaultLimitSec: r.defaultLimitSec,
		RoomCode:        r.code,
		ChairOccupied:   r.chairSessionID != "",
		PollState:       r.pollViewLocked(),
		RoomConfig:      r.config,
	}
}
