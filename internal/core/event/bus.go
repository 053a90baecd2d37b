package event

import (
	"reflect"
	"sync"
)

type queued struct {
	t  reflect.Type
	ev any
}

// Bus carries two kinds of traffic. Emit is double-buffered: events emitted
// in tick N are delivered in tick N+1 by EventDispatchSystem, in emission
// order. Publish is synchronous: handlers run before Publish returns, which
// is how death notifications reach traps and the scheduler in the same tick.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    []queued
	back     []queued
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]queued, 0, 32),
		back:     make([]queued, 0, 32),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (will be readable next tick).
func Emit[T any](b *Bus, event T) {
	b.back = append(b.back, queued{t: typeOf[T](), ev: event})
}

// Publish delivers an event to every subscribed handler immediately.
func Publish[T any](b *Bus, event T) {
	for _, h := range b.handlers[typeOf[T]()] {
		h.(func(T))(event)
	}
}

// Subscribe registers a typed handler for events of type T. Handlers run in
// registration order.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// Pending returns the number of deferred events waiting for the next swap.
func (b *Bus) Pending() int {
	return len(b.back)
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for _, q := range b.front {
		for _, h := range b.handlers[q.t] {
			callHandler(h, q.ev)
		}
	}
	b.front = b.front[:0]
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
