package mock

import (
	"context"
	"sync"

	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
	"github.com/facepay-lab/facepay/pkg/domain/model"
)

// EventSink records every published payment event for assertion in tests.
type EventSink struct {
	mu     sync.Mutex
	events []model.PaymentEvent
}

var _ interfaces.EventSink = &EventSink{}

func (s *EventSink) Publish(ctx context.Context, ev model.PaymentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a snapshot of published events in order.
func (s *EventSink) Events() []model.PaymentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PaymentEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Stages returns the stage sequence of published events.
func (s *EventSink) Stages() []string {
	var out []string
	for _, ev := range s.Events() {
		out = append(out, ev.Stage.String())
	}
	return out
}
