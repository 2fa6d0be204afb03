package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a game event on the wire.
type EventType string

const (
	EventTypePlayerList   EventType = "setPlayerList"
	EventTypeRoundStarted EventType = "startRound"
	EventTypeRoundEnded   EventType = "endRound"
	EventTypeHighScores   EventType = "highScores"
)

// Event is the envelope for every server-to-client message.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New builds an event envelope around the given payload.
func New(eventType EventType, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// ParsePayload decodes the event data into the payload struct matching its
// type. Unknown event types return (nil, nil).
func ParsePayload(event *Event) (any, error) {
	switch event.Type {
	case EventTypePlayerList:
		var payload PlayerListPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeRoundStarted:
		var payload RoundStartedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeRoundEnded:
		var payload RoundEndedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeHighScores:
		var payload HighScoresPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil
	}
}
