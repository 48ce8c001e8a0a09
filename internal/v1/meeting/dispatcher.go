package meeting

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/meta"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/registry"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/room"
)

// Dispatch validates one incoming frame and routes it to the owning room.
// Every fault maps to a targeted envelope on the offending session; nothing
// escapes as a panic.
func (h *Hub) Dispatch(ctx context.Context, c *Client, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(ctx, "Recovered from panic in dispatcher",
				zap.String("sessionId", c.sessionID), zap.Any("panic", r))
		}
	}()

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendValidationError(c, "malformed message envelope")
		return
	}

	metrics.Commands.WithLabelValues(msg.Type).Inc()
	timer := prometheus.NewTimer(metrics.CommandDuration.WithLabelValues(msg.Type))
	defer timer.ObserveDuration()

	switch msg.Type {
	case CmdJoin:
		h.handleJoin(ctx, c, msg.Payload)
	case CmdAssumeChair:
		h.handleAssumeChair(ctx, c, msg.Payload)
	case CmdRequest:
		h.handleRequest(c, msg.Payload)
	case CmdWithdraw:
		h.handleWithdraw(c, msg.Payload)
	case CmdNext:
		h.handleNext(c, msg.Payload)
	case CmdTimer:
		h.handleTimer(c, msg.Payload)
	case CmdSetLimit:
		h.handleSetLimit(c, msg.Payload)
	case CmdPollStart:
		h.handlePollStart(c, msg.Payload)
	case CmdPollVote:
		h.handlePollVote(c, msg.Payload)
	case CmdPollEnd:
		h.handlePollLifecycle(c, msg.Payload, (*room.Room).EndPoll)
	case CmdPollClose:
		h.handlePollLifecycle(c, msg.Payload, (*room.Room).ClosePoll)
	case CmdPollCancel:
		h.handlePollLifecycle(c, msg.Payload, (*room.Room).CancelPoll)
	case CmdUpdateConfig:
		h.handleUpdateConfig(c, msg.Payload)
	case CmdDestroy:
		h.handleDestroy(ctx, c, msg.Payload)
	default:
		h.sendValidationError(c, "unknown command type: "+msg.Type)
	}
}

// resolveRoom normalizes the code and looks the room up. Both failure modes
// are reported to the session; the returned room is nil on failure.
func (h *Hub) resolveRoom(c *Client, rawCode string) (*room.Room, string) {
	code := registry.NormalizeCode(rawCode)
	if !registry.ValidCode(code) {
		h.sendValidationError(c, "room code must be 4 characters")
		return nil, ""
	}

	r, err := h.registry.FindOrFail(code)
	if err != nil {
		h.sendRoomNotFound(c, code)
		return nil, ""
	}
	return r, code
}

func (h *Hub) sendValidationError(c *Client, detail string) {
	metrics.CommandErrors.WithLabelValues(ErrKindValidation).Inc()
	payload, _ := json.Marshal(ErrorPayload{Error: ErrKindValidation, Message: detail})
	c.SendMessage(Message{Type: EventError, Payload: payload})
}

func (h *Hub) sendRoomNotFound(c *Client, code string) {
	metrics.CommandErrors.WithLabelValues(ErrKindRoomNotFound).Inc()
	payload, _ := json.Marshal(ErrorPayload{
		Error:      ErrKindRoomNotFound,
		Message:    "This room does not exist or has been closed.",
		RoomCode:   code,
		LandingURL: h.landingURL,
	})
	c.SendMessage(Message{Type: EventError, Topic: ErrorTopic(code), Payload: payload})
}

func (h *Hub) sendChairAccessDenied(c *Client, code string) {
	metrics.CommandErrors.WithLabelValues(ErrKindChairAccessDenied).Inc()
	payload, _ := json.Marshal(ErrorPayload{
		Error:    ErrKindChairAccessDenied,
		Message:  "Only the chair can perform this action.",
		RoomCode: code,
	})
	c.SendMessage(Message{Type: EventError, Topic: ErrorTopic(code), Payload: payload})
	logging.Warn(context.Background(), "Chair-only command rejected",
		zap.String("sessionId", c.sessionID), zap.String("roomCode", code))
}

// chairResult folds the shared tail of every chair-only command: access
// failures go back to the caller, success publishes a fresh snapshot.
func (h *Hub) chairResult(c *Client, code string, err error) {
	if errors.Is(err, room.ErrChairAccessDenied) {
		h.sendChairAccessDenied(c, code)
		return
	}
	h.Broadcast(code)
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, raw json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid join payload")
		return
	}
	name, err := ValidateName(p.Name)
	if err != nil {
		h.sendValidationError(c, err.Error())
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}

	h.registry.BindSession(c.sessionID, code)
	c.subscribeRoom(h.broker, code)

	// The reserved name claims the chair when it is free; an occupied chair
	// turns the claim into a plain join.
	if name == ChairName {
		_ = r.AssumeChair(c.sessionID)
	}

	logging.Info(ctx, "Session joined room",
		zap.String("sessionId", c.sessionID), zap.String("roomCode", code), zap.String("name", name))
	h.Broadcast(code)
}

func (h *Hub) handleAssumeChair(ctx context.Context, c *Client, raw json.RawMessage) {
	var p AssumeChairPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid assumeChair payload")
		return
	}
	if _, err := ValidateName(p.ParticipantName); err != nil {
		h.sendValidationError(c, err.Error())
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}

	h.registry.BindSession(c.sessionID, code)
	c.subscribeRoom(h.broker, code)

	err := r.AssumeChair(c.sessionID)

	reply, _ := json.Marshal(ChairAssumedPayload{Success: err == nil, RequestID: p.RequestID})
	c.SendMessage(Message{Type: EventChairAssumed, Topic: ChairAssumedTopic(code), Payload: reply})

	if err != nil {
		logging.Info(ctx, "Chair claim refused, chair occupied",
			zap.String("sessionId", c.sessionID), zap.String("roomCode", code))
	}
	// Broadcast on refusal too so every UI reconciles chairOccupied.
	h.Broadcast(code)
}

func (h *Hub) handleRequest(c *Client, raw json.RawMessage) {
	var p NamePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid request payload")
		return
	}
	name, err := ValidateName(p.Name)
	if err != nil {
		h.sendValidationError(c, err.Error())
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	r.AddToQueue(name)
	h.Broadcast(code)
}

func (h *Hub) handleWithdraw(c *Client, raw json.RawMessage) {
	var p NamePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid withdraw payload")
		return
	}
	name, err := ValidateName(p.Name)
	if err != nil {
		h.sendValidationError(c, err.Error())
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	r.Withdraw(name)
	h.Broadcast(code)
}

func (h *Hub) handleNext(c *Client, raw json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid next payload")
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	h.chairResult(c, code, r.NextParticipant(c.sessionID))
}

func (h *Hub) handleTimer(c *Client, raw json.RawMessage) {
	var p TimerPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid timer payload")
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}

	var err error
	switch p.Action {
	case TimerStart:
		err = r.StartTimer(c.sessionID)
	case TimerPause:
		err = r.PauseTimer(c.sessionID)
	case TimerReset:
		err = r.ResetTimer(c.sessionID)
	default:
		h.sendValidationError(c, "timer action must be start, pause or reset")
		return
	}
	h.chairResult(c, code, err)
}

func (h *Hub) handleSetLimit(c *Client, raw json.RawMessage) {
	var p SetLimitPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid setLimit payload")
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	h.chairResult(c, code, r.UpdateLimit(c.sessionID, p.Seconds))
}

func (h *Hub) handlePollStart(c *Client, raw json.RawMessage) {
	var p PollStartPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid poll/start payload")
		return
	}
	question, err := ValidateQuestion(p.Question)
	if err != nil {
		h.sendValidationError(c, err.Error())
		return
	}
	pollType, ok := room.ParsePollType(p.PollType)
	if !ok {
		h.sendValidationError(c, "unknown poll type: "+p.PollType)
		return
	}
	if (pollType == room.PollMultiselect || pollType == room.PollMultiselectMultiple) && len(p.Options) == 0 {
		h.sendValidationError(c, "multiselect polls need at least one option")
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	h.chairResult(c, code, r.StartPoll(c.sessionID, question, pollType, p.Options, p.VotesPerParticipant))
}

func (h *Hub) handlePollVote(c *Client, raw json.RawMessage) {
	var p PollVotePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid poll/vote payload")
		return
	}
	if p.Vote == "" {
		h.sendValidationError(c, "vote must not be empty")
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	// Rejected ballots (inactive poll, unknown key, full ballot) change
	// nothing, so there is nothing to broadcast.
	if r.CastVote(c.sessionID, p.Vote) {
		h.Broadcast(code)
	}
}

func (h *Hub) handlePollLifecycle(c *Client, raw json.RawMessage, op func(*room.Room, string) error) {
	var p RoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid poll payload")
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	h.chairResult(c, code, op(r, c.sessionID))
}

func (h *Hub) handleUpdateConfig(c *Client, raw json.RawMessage) {
	var p UpdateConfigPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid updateConfig payload")
		return
	}

	cfg := room.Config{}
	if p.Topic != nil {
		topic, err := ValidateTopic(*p.Topic)
		if err != nil {
			h.sendValidationError(c, err.Error())
			return
		}
		if topic != "" {
			cfg.Topic = &topic
		}
	}
	// Enumeration fields that fail to parse are treated as unset, never as
	// an error, so stale front-ends cannot wedge the config.
	if p.MeetingGoal != nil {
		if v, ok := meta.ParseMeetingGoal(*p.MeetingGoal); ok {
			cfg.MeetingGoal = &v
		}
	}
	if p.ParticipationFormat != nil {
		if v, ok := meta.ParseParticipationFormat(*p.ParticipationFormat); ok {
			cfg.ParticipationFormat = &v
		}
	}
	if p.DecisionRule != nil {
		if v, ok := meta.ParseDecisionRule(*p.DecisionRule); ok {
			cfg.DecisionRule = &v
		}
	}
	if p.Deliverable != nil {
		if v, ok := meta.ParseDeliverable(*p.Deliverable); ok {
			cfg.Deliverable = &v
		}
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	h.chairResult(c, code, r.UpdateConfig(c.sessionID, cfg))
}

func (h *Hub) handleDestroy(ctx context.Context, c *Client, raw json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendValidationError(c, "invalid destroy payload")
		return
	}

	r, code := h.resolveRoom(c, p.RoomCode)
	if r == nil {
		return
	}
	if !r.IsChairSession(c.sessionID) {
		h.sendChairAccessDenied(c, code)
		return
	}

	notice, _ := json.Marshal(DestroyedPayload{
		Message:    "This room has been closed by the chair.",
		LandingURL: h.landingURL,
	})
	frame, _ := json.Marshal(Message{Type: EventDestroyed, Topic: DestroyedTopic(code), Payload: notice})
	h.broker.Publish(DestroyedTopic(code), frame)

	sessions := h.registry.SessionsOf(code)
	h.registry.Destroy(code)
	h.detachRoom(code, sessions)

	logging.Info(ctx, "Room destroyed by chair",
		zap.String("sessionId", c.sessionID), zap.String("roomCode", code),
		zap.Int("sessions", len(sessions)))
}
