package core

import (
	"context"
	"errors"
	"fmt"

	"ideospace/pkg/domain"
)

// Handler reacts to a published event.
type Handler func(ctx context.Context, event domain.Event) error

// Publisher is the emitting side of the bus, as seen by stores.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous in-process event bus. Handlers for an event type run
// in registration order on the publishing goroutine. A handler may publish
// other event types but not the type it is handling.
//
// Bus is not safe for concurrent use; it assumes one mutation is processed
// to completion before the next one starts.
type Bus struct {
	nextID   uint64
	handlers map[domain.EventType][]subscription
	active   map[domain.EventType]bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[domain.EventType][]subscription),
		active:   make(map[domain.EventType]bool),
	}
}

// Subscribe registers h for events of type t and returns a function that
// removes the registration.
func (b *Bus) Subscribe(t domain.EventType, h Handler) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: h})
	return func() {
		subs := b.handlers[t]
		for i, s := range subs {
			if s.id == id {
				b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers event to every handler registered for its type. All
// handlers run even when one fails; their errors are joined.
func (b *Bus) Publish(ctx context.Context, event domain.Event) error {
	if b.active[event.Type] {
		return fmt.Errorf("publish %s: %w", event.Type, domain.ErrReentrantDispatch)
	}
	b.active[event.Type] = true
	defer delete(b.active, event.Type)

	subs := append([]subscription(nil), b.handlers[event.Type]...)
	var errs []error
	for _, s := range subs {
		if err := s.handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
