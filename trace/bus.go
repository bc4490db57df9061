// Package trace implements BTflow's span/event bus: context-propagated
// trace identity backed by a real OpenTelemetry tracer, plus a native
// subscriber bus that mirrors the emit()/subscribe() API of
// original_source/btflow/core/trace.py, re-architected per SPEC_FULL.md
// §4.11 onto context.Context instead of Python contextvars.
package trace

import "sync"

// Event is one emitted trace event: a name (e.g. "span_start", "tool_call")
// and a payload map, mirroring Python's emit(event, payload).
type Event struct {
	Name    string
	Payload map[string]any
}

// Subscriber receives every emitted Event, in subscription order.
type Subscriber func(Event)

// Bus fans out emitted events to registered subscribers. A panicking
// subscriber is recovered and discarded so it cannot break later
// subscribers (mirroring trace.py's emit() try/except-and-log loop).
type Bus struct {
	mu     sync.Mutex
	subs   []busSub
	nextID uint64
}

type busSub struct {
	id uint64
	fn Subscriber
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns an unsubscribe function.
func (b *Bus) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, busSub{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers event to every current subscriber.
func (b *Bus) Emit(event Event) {
	b.mu.Lock()
	subs := make([]busSub, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		b.callSubscriber(s.fn, event)
	}
}

func (b *Bus) callSubscriber(fn Subscriber, event Event) {
	defer func() { _ = recover() }()
	fn(event)
}
