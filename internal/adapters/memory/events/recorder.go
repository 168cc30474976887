package events

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/events"
)

// Recorder is an in-memory events.Publisher that keeps every published event.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
	// Err, when set, is returned from Publish after the event is recorded.
	Err error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, e events.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// OfType returns recorded events matching t.
func (r *Recorder) OfType(t events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, 0)
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
