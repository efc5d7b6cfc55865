package service

import (
	"context"
	"fmt"

	"chatx-be/internal/pkg/logger"
	"chatx-be/internal/websocket"
	"chatx-be/pkg/events"
	pktNats "chatx-be/pkg/nats"

	"github.com/google/uuid"
)

// EventRelayService bridges the NATS event bus to connected websocket
// clients. Events carrying a user_id are delivered to that user only.
type EventRelayService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewEventRelayService(subscriber *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) *EventRelayService {
	return &EventRelayService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

// Start registers a durable consumer for every event subject.
func (s *EventRelayService) Start() error {
	return s.subscriber.Subscribe("events.>", "ws-relay", s.relay)
}

func (s *EventRelayService) relay(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	frame := websocket.Frame{
		Type: websocket.FrameNotification,
		Data: map[string]interface{}{
			"event": event.EventType(),
			"data":  payload,
		},
	}

	raw, ok := payload["user_id"]
	if !ok {
		s.hub.Broadcast(frame)
		return nil
	}

	userId, err := parseUserId(raw)
	if err != nil {
		s.logger.Warn("EventRelay", "Event without parseable user_id", map[string]interface{}{
			"event": event.EventType(),
		})
		return nil
	}

	s.hub.Send(userId, frame)
	return nil
}

func parseUserId(raw interface{}) (uuid.UUID, error) {
	switch v := raw.(type) {
	case string:
		return uuid.Parse(v)
	case uuid.UUID:
		return v, nil
	default:
		return uuid.Nil, fmt.Errorf("unsupported user_id type %T", raw)
	}
}
