package events

import (
	"context"
	"time"
)

// Type names a domain event; it doubles as the message routing key.
type Type string

const (
	TypeAccountSignedUp Type = "account.signed_up"
	TypeRideRequested   Type = "ride.requested"
)

// Event is a published domain fact. Payload must be JSON-serializable.
type Event struct {
	Type        Type
	AggregateID string
	OccurredAt  time.Time
	Payload     any
}

// Publisher delivers domain events to interested consumers.
// Delivery is best-effort; callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
