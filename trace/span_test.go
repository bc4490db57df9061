package trace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracer_StartSpanEmitsStartAndEnd(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	tracer := NewTracer(bus)
	defer tracer.Shutdown(context.Background())

	var events []Event
	bus.Subscribe(func(e Event) { events = append(events, e) })

	_, span, end := tracer.StartSpan(context.Background(), "do-thing", map[string]any{"k": "v"})
	require.Equal(t, "do-thing", span.Name)
	end(nil)

	require.Len(t, events, 2)
	require.Equal(t, "span_start", events[0].Name)
	require.Equal(t, "span_end", events[1].Name)
	require.Equal(t, "success", events[1].Payload["status"])
}

func TestTracer_StartSpanRecordsErrorStatus(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	tracer := NewTracer(bus)
	defer tracer.Shutdown(context.Background())

	var events []Event
	bus.Subscribe(func(e Event) { events = append(events, e) })

	_, _, end := tracer.StartSpan(context.Background(), "fails", nil)
	end(errors.New("kaboom"))

	require.Len(t, events, 2)
	require.Equal(t, "error", events[1].Payload["status"])
	require.Equal(t, "kaboom", events[1].Payload["error"])
}

func TestTracer_NestedSpansSharePropagatedParent(t *testing.T) {
	t.Parallel()
	bus := NewBus()
	tracer := NewTracer(bus)
	defer tracer.Shutdown(context.Background())

	ctx, outer, endOuter := tracer.StartSpan(context.Background(), "outer", nil)
	_, inner, endInner := tracer.StartSpan(ctx, "inner", nil)

	require.Equal(t, outer.ID, inner.ParentID)
	require.Equal(t, outer.TraceID, inner.TraceID)

	endInner(nil)
	endOuter(nil)
}

func TestTraceContext_PropagationViaContext(t *testing.T) {
	t.Parallel()
	ctx := WithTraceContext(context.Background(), TraceContext{TraceID: "abc", Metadata: map[string]any{"run": "1"}})
	tc, ok := CurrentTraceContext(ctx)
	require.True(t, ok)
	require.Equal(t, "abc", tc.TraceID)
	require.Equal(t, "1", tc.Metadata["run"])
}
