package bus

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds published by the client core. Subscribers filter by
// namespace prefix, e.g. "message." receives every message event.
const (
	KindMessageReceived   = "message.received"
	KindMessageSent       = "message.sent"
	KindMessageSendFailed = "message.send_failed"
	KindTapbackUpdated    = "tapback.updated"
	KindWarningSet        = "warning.set"
	KindWarningCleared    = "warning.cleared"
	KindPinsChanged       = "conversation.pins_changed"
	KindStatusChanged     = "connection.status_changed"
)

// Event is a domain event delivered to UI-layer subscribers.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent builds an event with a fresh id and the current time.
func NewEvent(kind string, payload any) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
