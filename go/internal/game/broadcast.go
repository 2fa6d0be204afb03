package game

import (
	"github.com/mattcreaser/typerace/go/internal/game/events"
)

// Broadcaster pushes an event to every connected client. Implementations must
// not block: delivery is fire-and-forget, with no acknowledgment and no
// backpressure on slow recipients.
type Broadcaster interface {
	Broadcast(event *events.Event)
}

// MultiBroadcaster fans an event out to several broadcasters, e.g. the
// websocket connection manager plus the NATS relay.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) Broadcast(event *events.Event) {
	for _, b := range m {
		b.Broadcast(event)
	}
}
