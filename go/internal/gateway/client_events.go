package gateway

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Client-to-server event types.
const (
	clientEventJoin     = "join"
	clientEventWordDone = "wordDone"
)

// clientEvent is the envelope for every client-to-server message.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type joinPayload struct {
	Name string `json:"name"`
}

type wordDonePayload struct {
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// handleClientEvent routes one message from this connection into the game
// session. Malformed messages are logged and dropped; they never fail the
// connection.
func (c *Connection) handleClientEvent(message []byte) {
	var event clientEvent
	if err := json.Unmarshal(message, &event); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Msg("malformed client event dropped")
		return
	}

	switch event.Type {
	case clientEventJoin:
		var payload joinPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			log.Warn().Err(err).Str("connection_id", c.ID).Msg("malformed join payload dropped")
			return
		}

		c.playerMu.Lock()
		if c.player != nil {
			c.playerMu.Unlock()
			log.Debug().Str("connection_id", c.ID).Msg("duplicate join ignored")
			return
		}
		c.player = c.session.HandleJoin(payload.Name)
		c.playerMu.Unlock()

	case clientEventWordDone:
		var payload wordDonePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			log.Warn().Err(err).Str("connection_id", c.ID).Msg("malformed wordDone payload dropped")
			return
		}

		c.playerMu.Lock()
		player := c.player
		c.playerMu.Unlock()
		if player == nil {
			log.Debug().Str("connection_id", c.ID).Msg("wordDone before join ignored")
			return
		}
		c.session.Score(player, payload.ElapsedSeconds)

	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("event_type", event.Type).
			Msg("unknown client event ignored")
	}
}
