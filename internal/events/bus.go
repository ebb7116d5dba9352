package events

import (
	"context"
	"log/slog"

	rpgevents "github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/delveforge/delve-engine/internal/errors"
)

// EventBus is the subscription point the engine publishes to
type EventBus interface {
	// Publish delivers the event to every subscriber of its type.
	// Subscriber errors are logged and swallowed; a failing observer must
	// never fail the engine operation that triggered the event.
	Publish(ctx context.Context, event Event) error

	// SubscribeFunc registers a handler for one event type and returns a
	// subscription ID
	SubscribeFunc(eventType string, fn HandlerFunc) string

	// Unsubscribe removes a subscription by ID
	Unsubscribe(id string) error

	// Clear removes all subscriptions for one event type
	Clear(eventType string)

	// ClearAll removes every subscription
	ClearAll()
}

// payloadKey is the context slot the typed domain event rides in on the
// toolkit's game event.
const payloadKey = "payload"

// Bus delivers typed domain events over an rpg-toolkit event bus. The
// toolkit bus owns routing and subscription bookkeeping; this wrapper
// carries the typed payload and enforces the swallowed-error contract.
type Bus struct {
	inner rpgevents.EventBus
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{inner: rpgevents.NewBus()}
}

// Publish implements EventBus
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return errors.InvalidArgument("event cannot be nil")
	}

	carrier := rpgevents.NewGameEvent(event.EventType(), nil, nil)
	carrier.Context().Set(payloadKey, event)
	return b.inner.Publish(ctx, carrier)
}

// SubscribeFunc implements EventBus
func (b *Bus) SubscribeFunc(eventType string, fn HandlerFunc) string {
	return b.inner.SubscribeFunc(eventType, 0, func(ctx context.Context, carrier rpgevents.Event) error {
		payload, ok := carrier.Context().Get(payloadKey)
		if !ok {
			return nil
		}
		event, ok := payload.(Event)
		if !ok {
			return nil
		}
		if err := fn(ctx, event); err != nil {
			slog.Warn("event subscriber failed",
				"event_type", eventType,
				"error", err,
			)
		}
		return nil
	})
}

// Unsubscribe implements EventBus
func (b *Bus) Unsubscribe(id string) error {
	return b.inner.Unsubscribe(id)
}

// Clear implements EventBus
func (b *Bus) Clear(eventType string) {
	b.inner.Clear(eventType)
}

// ClearAll implements EventBus
func (b *Bus) ClearAll() {
	b.inner.ClearAll()
}

var _ EventBus = (*Bus)(nil)
