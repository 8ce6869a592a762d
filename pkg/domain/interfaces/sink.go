package interfaces

import (
	"context"

	"github.com/facepay-lab/facepay/pkg/domain/model"
)

// EventSink receives payment progress events for display. The payment flow
// never blocks on a slow sink; events that cannot be delivered in time are
// dropped rather than stalling the state machine.
type EventSink interface {
	Publish(ctx context.Context, ev model.PaymentEvent)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, ev model.PaymentEvent)

func (f EventSinkFunc) Publish(ctx context.Context, ev model.PaymentEvent) {
	f(ctx, ev)
}
