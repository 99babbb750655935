package events

import (
	"context"
	"time"
)

const (
	NoteCreated    = "NOTE_CREATED"
	NoteUpdated    = "NOTE_UPDATED"
	NoteDeleted    = "NOTE_DELETED"
	UserRegistered = "USER_REGISTERED"
	UserLogin      = "USER_LOGIN"
	UserDeleted    = "USER_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	Timestamp() time.Time
}

// Publisher delivers events to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
