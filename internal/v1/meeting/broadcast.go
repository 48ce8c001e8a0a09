package meeting

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Meeting-Coordination/backend/go/internal/v1/metrics"
)

// Broadcast publishes a fresh snapshot of the room on its state topic. A room
// that vanished between command completion and snapshot (the eviction race)
// yields a ROOM_DESTROYED envelope on the room's error topic instead, so
// lingering subscribers navigate away rather than wait for state that will
// never come.
func (h *Hub) Broadcast(code string) {
	r := h.registry.Find(code)
	if r == nil {
		payload, _ := json.Marshal(ErrorPayload{
			Error:      ErrKindRoomDestroyed,
			Message:    "This room no longer exists.",
			RoomCode:   code,
			LandingURL: h.landingURL,
		})
		frame, _ := json.Marshal(Message{Type: EventError, Topic: ErrorTopic(code), Payload: payload})
		h.broker.Publish(ErrorTopic(code), frame)
		return
	}

	state := r.Snapshot()
	payload, err := json.Marshal(state)
	if err != nil {
		logging.Error(context.Background(), "Failed to marshal room snapshot",
			zap.String("roomCode", code), zap.Error(err))
		return
	}
	frame, err := json.Marshal(Message{Type: EventState, Topic: StateTopic(code), Payload: payload})
	if err != nil {
		logging.Error(context.Background(), "Failed to marshal state frame",
			zap.String("roomCode", code), zap.Error(err))
		return
	}

	h.broker.Publish(StateTopic(code), frame)

	metrics.Broadcasts.Inc()
	metrics.BroadcastBytes.Observe(float64(len(frame)))
}
