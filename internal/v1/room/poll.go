package room

import (
	"fmt"

	"k8s.io/utils/set"
)

// PollType discriminates the poll variants.
type PollType string

const (
	PollYesNo               PollType = "YES_NO"
	PollGradients           PollType = "GRADIENTS"
	PollMultiselect         PollType = "MULTISELECT"
	PollMultiselectMultiple PollType = "MULTISELECT_MULTIPLE"
)

// ParsePollType maps a raw string onto a known PollType.
func ParsePollType(s string) (PollType, bool) {
	switch PollType(s) {
	case PollYesNo, PollGradients, PollMultiselect, PollMultiselectMultiple:
		return PollType(s), true
	}
	return "", false
}

// PollStatus is the lifecycle state of a poll. The zero value means no poll
// has been started (or the last one was cancelled).
type PollStatus string

const (
	PollStatusActive PollStatus = "ACTIVE"
	PollStatusEnded  PollStatus = "ENDED"
	PollStatusClosed PollStatus = "CLOSED"
)

// gradientLevels is the fixed option count of a GRADIENTS poll.
const gradientLevels = 8

// pollState is the live poll bookkeeping. Ballots are keyed by session id;
// single-selection variants keep one key per session, MULTISELECT_MULTIPLE
// keeps a set capped at votesPerParticipant.
type pollState struct {
	question            string
	pollType            PollType
	status              PollStatus
	tallies             map[string]int
	ballots             map[string]string
	multiBallots        map[string]set.Set[string]
	options             []string
	votesPerParticipant int
	lastResults         *PollResults
}

// PollResults is the frozen tally captured when a poll ends. It survives
// ClosePoll so late joiners still see the outcome.
type PollResults struct {
	Question   string         `json:"question"`
	PollType   PollType       `json:"pollType"`
	Results    map[string]int `json:"results"`
	TotalVotes int            `json:"totalVotes"`
	Options    []string       `json:"options,omitempty"`
}

func (p *pollState) totalVotes() int {
	total := 0
	for _, n := range p.tallies {
		total += n
	}
	return total
}

// resetLive clears everything but lastResults.
func (p *pollState) resetLive() {
	p.question = ""
	p.pollType = ""
	p.status = ""
	p.tallies = nil
	p.ballots = nil
	p.multiBallots = nil
	p.options = nil
	p.votesPerParticipant = 1
}

// StartPoll opens a new poll, discarding any live one. Chair-only. Allowed
// from every status; tallies and ballots start from zero. YES_NO and
// GRADIENTS use fixed option keys; the MULTISELECT variants derive
// OPT_0..OPT_{n-1} from the supplied labels. votesPerParticipant caps
// MULTISELECT_MULTIPLE ballots and defaults to 1 when not positive.
func (r *Room) StartPoll(sessionID, question string, pollType PollType, options []string, votesPerParticipant int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}

	if votesPerParticipant < 1 {
		votesPerParticipant = 1
	}

	r.poll.question = question
	r.poll.pollType = pollType
	r.poll.status = PollStatusActive
	r.poll.tallies = map[string]int{}
	r.poll.ballots = map[string]string{}
	r.poll.multiBallots = map[string]set.Set[string]{}
	r.poll.options = nil
	r.poll.votesPerParticipant = votesPerParticipant

	switch pollType {
	case PollYesNo:
		r.poll.tallies["YES"] = 0
		r.poll.tallies["NO"] = 0
	case PollGradients:
		for i := 1; i <= gradientLevels; i++ {
			r.poll.tallies[fmt.Sprintf("OPT_%d", i)] = 0
		}
	case PollMultiselect, PollMultiselectMultiple:
		if len(options) > 0 {
			r.poll.options = append([]string(nil), options...)
			for i := range options {
				r.poll.tallies[fmt.Sprintf("OPT_%d", i)] = 0
			}
		}
	}
	return nil
}

// CastVote records a ballot for the given option key and reports whether the
// tallies changed. Votes are accepted only while the poll is ACTIVE and the
// key exists. Single-selection variants replace the session's previous
// ballot. MULTISELECT_MULTIPLE toggles: a selected key is deselected, a new
// key is accepted while the ballot holds fewer than votesPerParticipant
// selections and rejected once the cap is reached.
func (r *Room) CastVote(sessionID, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.poll.status != PollStatusActive {
		return false
	}
	if _, known := r.poll.tallies[key]; !known {
		return false
	}

	if r.poll.pollType == PollMultiselectMultiple {
		ballot, ok := r.poll.multiBallots[sessionID]
		if !ok {
			ballot = set.New[string]()
			r.poll.multiBallots[sessionID] = ballot
		}
		if ballot.Has(key) {
			ballot.Delete(key)
			r.poll.tallies[key]--
			return true
		}
		if ballot.Len() >= r.poll.votesPerParticipant {
			return false
		}
		ballot.Insert(key)
		r.poll.tallies[key]++
		return true
	}

	if previous, voted := r.poll.ballots[sessionID]; voted {
		r.poll.tallies[previous]--
	}
	r.poll.tallies[key]++
	r.poll.ballots[sessionID] = key
	return true
}

// EndPoll freezes an ACTIVE poll into lastResults and marks it ENDED.
// Chair-only. Any other status is a silent no-op.
func (r *Room) EndPoll(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}
	if r.poll.question == "" || r.poll.status != PollStatusActive {
		return nil
	}

	results := make(map[string]int, len(r.poll.tallies))
	for k, v := range r.poll.tallies {
		results[k] = v
	}
	r.poll.lastResults = &PollResults{
		Question:   r.poll.question,
		PollType:   r.poll.pollType,
		Results:    results,
		TotalVotes: r.poll.totalVotes(),
		Options:    append([]string(nil), r.poll.options...),
	}
	r.poll.status = PollStatusEnded
	return nil
}

// ClosePoll retires an ENDED poll, clearing the live fields while keeping
// lastResults on display. Chair-only. Any other status is a silent no-op.
func (r *Room) ClosePoll(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}
	if r.poll.status != PollStatusEnded {
		return nil
	}

	last := r.poll.lastResults
	r.poll.resetLive()
	r.poll.status = PollStatusClosed
	r.poll.lastResults = last
	return nil
}

// CancelPoll discards the poll entirely, lastResults included. Chair-only.
// Allowed from every status.
func (r *Room) CancelPoll(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireChairLocked(sessionID); err != nil {
		return err
	}

	r.poll.resetLive()
	r.poll.lastResults = nil
	return nil
}

// IsPolling reports whether a poll is currently accepting votes.
func (r *Room) IsPolling() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.poll.status == PollStatusActive
}
