package trace

import (
	"context"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// busSpanProcessor implements sdktrace.SpanProcessor, re-emitting every
// OTel span's start/end as a native Bus event ("span_start"/"span_end"),
// matching trace.py's span context-manager's own emit() calls. This is
// what lets BTflow spans be simultaneously real OTel spans (exportable to
// any configured OTel backend) and native BTflow trace events (consumed
// by in-process subscribers with no OTel dependency of their own).
type busSpanProcessor struct {
	bus *Bus
}

var _ sdktrace.SpanProcessor = (*busSpanProcessor)(nil)

func (p *busSpanProcessor) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	parentID := ""
	if parent := s.Parent(); parent.IsValid() {
		parentID = parent.SpanID().String()
	}

	p.bus.Emit(Event{
		Name: "span_start",
		Payload: map[string]any{
			"span_id":   s.SpanContext().SpanID().String(),
			"parent_id": parentID,
			"trace_id":  s.SpanContext().TraceID().String(),
			"name":      s.Name(),
			"ts":        time.Now(),
		},
	})
}

func (p *busSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	status := "success"
	var errMsg string
	if s.Status().Code.String() == "Error" {
		status = "error"
		errMsg = s.Status().Description
	}

	payload := map[string]any{
		"span_id":     s.SpanContext().SpanID().String(),
		"trace_id":    s.SpanContext().TraceID().String(),
		"name":        s.Name(),
		"status":      status,
		"duration_ms": float64(s.EndTime().Sub(s.StartTime())) / float64(time.Millisecond),
	}
	if errMsg != "" {
		payload["error"] = errMsg
	}

	p.bus.Emit(Event{Name: "span_end", Payload: payload})
}

func (p *busSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *busSpanProcessor) ForceFlush(context.Context) error { return nil }
