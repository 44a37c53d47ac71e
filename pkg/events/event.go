package events

import "time"

// Event defines the contract for everything published on the receipt bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ROUTE_UPDATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Envelope is the wire form events travel in on the bus: the type tag lets
// subscribers route without decoding the payload.
type Envelope struct {
	Type       string                 `json:"type"`
	Channel    string                 `json:"channel"`
	Summary    string                 `json:"summary"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}
