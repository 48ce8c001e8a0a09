// Package meeting is the session layer of the coordination server: it owns
// the websocket connections, the command dispatcher that drives rooms, the
// snapshot broadcaster and the REST surface for creating and probing rooms.
package meeting

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Message is the JSON envelope for every frame in both directions. Commands
// set Type and Payload; server events additionally carry the topic the frame
// was published on so clients can demux a single connection.
type Message struct {
	Type    string          `json:"type"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Command types, client to server. Every payload carries the room code.
const (
	CmdJoin         = "join"
	CmdAssumeChair  = "assumeChair"
	CmdRequest      = "request"
	CmdWithdraw     = "withdraw"
	CmdNext         = "next"
	CmdTimer        = "timer"
	CmdSetLimit     = "setLimit"
	CmdPollStart    = "poll/start"
	CmdPollVote     = "poll/vote"
	CmdPollEnd      = "poll/end"
	CmdPollClose    = "poll/close"
	CmdPollCancel   = "poll/cancel"
	CmdUpdateConfig = "updateConfig"
	CmdDestroy      = "destroy"
)

// Event types, server to client.
const (
	EventState        = "state"
	EventChairAssumed = "chairAssumed"
	EventDestroyed    = "destroyed"
	EventError        = "error"
)

// Error kinds carried in ErrorPayload.Error.
const (
	ErrKindValidation        = "VALIDATION_ERROR"
	ErrKindRoomNotFound      = "ROOM_NOT_FOUND"
	ErrKindChairAccessDenied = "CHAIR_ACCESS_DENIED"
	ErrKindRoomDestroyed     = "ROOM_DESTROYED"
)

// ChairName is the reserved display name: joining under it claims the chair.
const ChairName = "Chair"

// Timer actions accepted by CmdTimer.
const (
	TimerStart = "start"
	TimerPause = "pause"
	TimerReset = "reset"
)

// JoinPayload enters a session into a room.
type JoinPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

// AssumeChairPayload claims the chair; RequestID is echoed in the reply so
// concurrent claims can be told apart by the UI.
type AssumeChairPayload struct {
	RoomCode        string `json:"roomCode"`
	ParticipantName string `json:"participantName"`
	RequestID       string `json:"requestId"`
}

// NamePayload serves CmdRequest and CmdWithdraw.
type NamePayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

// RoomPayload serves the commands with no arguments beyond the room.
type RoomPayload struct {
	RoomCode string `json:"roomCode"`
}

// TimerPayload drives the speech timer.
type TimerPayload struct {
	RoomCode string `json:"roomCode"`
	Action   string `json:"action"`
}

// SetLimitPayload updates the per-speaker limit.
type SetLimitPayload struct {
	RoomCode string `json:"roomCode"`
	Seconds  int    `json:"seconds"`
}

// PollStartPayload opens a poll.
type PollStartPayload struct {
	RoomCode            string   `json:"roomCode"`
	Question            string   `json:"question"`
	PollType            string   `json:"pollType"`
	Options             []string `json:"options,omitempty"`
	VotesPerParticipant int      `json:"votesPerParticipant,omitempty"`
}

// PollVotePayload casts a ballot for one option key.
type PollVotePayload struct {
	RoomCode string `json:"roomCode"`
	Vote     string `json:"vote"`
}

// UpdateConfigPayload replaces the room configuration. Unknown enumeration
// values are accepted and treated as unset.
type UpdateConfigPayload struct {
	RoomCode            string  `json:"roomCode"`
	Topic               *string `json:"topic"`
	MeetingGoal         *string `json:"meetingGoal"`
	ParticipationFormat *string `json:"participationFormat"`
	DecisionRule        *string `json:"decisionRule"`
	Deliverable         *string `json:"deliverable"`
}

// ChairAssumedPayload is the targeted reply to CmdAssumeChair.
type ChairAssumedPayload struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId"`
}

// DestroyedPayload tells subscribers the room is gone and where to go.
type DestroyedPayload struct {
	Message    string `json:"message"`
	LandingURL string `json:"landingUrl"`
}

// ErrorPayload is the fault envelope, targeted or broadcast.
type ErrorPayload struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RoomCode   string `json:"roomCode,omitempty"`
	LandingURL string `json:"landingUrl,omitempty"`
}

// Per-room topic names. Clients are attached to all three on join.
func StateTopic(code string) string        { return "room/" + code + "/state" }
func ChairAssumedTopic(code string) string { return "room/" + code + "/chairAssumed" }
func DestroyedTopic(code string) string    { return "room/" + code + "/destroyed" }
func ErrorTopic(code string) string        { return "room/" + code + "/error" }

// Field limits enforced before any room call.
const (
	maxNameLen     = 30
	maxQuestionLen = 200
	maxConfigLen   = 100
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9 '.\-]+$`)

// ValidateName checks a display name: 1-30 characters after trimming, drawn
// from letters, digits, spaces, apostrophes, dots and hyphens.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name must not be empty")
	}
	if len(name) > maxNameLen {
		return "", fmt.Errorf("name must be at most %d characters", maxNameLen)
	}
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("name contains unsupported characters")
	}
	return name, nil
}

// ValidateQuestion checks a poll question: 1-200 characters after trimming.
func ValidateQuestion(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question must not be empty")
	}
	if len(question) > maxQuestionLen {
		return "", fmt.Errorf("question must be at most %d characters", maxQuestionLen)
	}
	return question, nil
}

// ValidateTopic checks the free-text configuration topic: at most 100
// characters. Empty is allowed and means unset.
func ValidateTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if len(topic) > maxConfigLen {
		return "", fmt.Errorf("topic must be at most %d characters", maxConfigLen)
	}
	return topic, nil
}
