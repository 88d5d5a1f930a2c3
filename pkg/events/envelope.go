package events

import (
	"encoding/json"
	"time"
)

// EnvelopeVersion is the current payload schema version.
const EnvelopeVersion = 1

// ActorRef identifies who produced the event.
type ActorRef struct {
	ID string `json:"id"`
}

// Envelope is the stable wire shape of an event payload.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
