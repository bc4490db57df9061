package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBus_EmitDeliversToAllSubscribers(t *testing.T) {
	t.Parallel()
	b := NewBus()
	var a, c []Event
	b.Subscribe(func(e Event) { a = append(a, e) })
	b.Subscribe(func(e Event) { c = append(c, e) })

	b.Emit(Event{Name: "span_start", Payload: map[string]any{"x": 1}})

	require.Len(t, a, 1)
	require.Len(t, c, 1)
	require.Equal(t, "span_start", a[0].Name)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()
	b := NewBus()
	var calls int
	unsub := b.Subscribe(func(Event) { calls++ })
	unsub()

	b.Emit(Event{Name: "x"})
	require.Equal(t, 0, calls)
}

func TestBus_PanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	b := NewBus()
	secondCalled := false
	b.Subscribe(func(Event) { panic("boom") })
	b.Subscribe(func(Event) { secondCalled = true })

	b.Emit(Event{Name: "x"})
	require.True(t, secondCalled)
}
