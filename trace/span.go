package trace

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TraceContext is a trace ID plus free-form metadata carried on a
// context.Context (original_source/btflow/core/trace.py's TraceContext,
// re-architected onto context.Context instead of contextvars — spec.md
// §9, SPEC_FULL.md §4.11). Tracer.StartSpan does not read it: span trace
// IDs come from the OTel span context.
type TraceContext struct {
	TraceID  string
	Metadata map[string]any
}

type traceContextKey struct{}

// WithTraceContext attaches tc to ctx, for retrieval via
// CurrentTraceContext. Spans started under the returned context do not
// take on tc.TraceID or tc.Metadata.
func WithTraceContext(ctx context.Context, tc TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// CurrentTraceContext returns the TraceContext attached to ctx, if any.
func CurrentTraceContext(ctx context.Context) (TraceContext, bool) {
	tc, ok := ctx.Value(traceContextKey{}).(TraceContext)
	return tc, ok
}

// Span is BTflow's view of an in-flight or completed span, after
// trace.py's Span dataclass (id/trace_id/parent_id/name/start_time/
// metadata), backed by a real OTel span so it is simultaneously valid as
// an OpenTelemetry span. Span holds no end time or status; the span_end
// bus event carries the status and duration.
type Span struct {
	ID        string
	TraceID   string
	ParentID  string
	Name      string
	StartTime time.Time
	Metadata  map[string]any

	otelSpan oteltrace.Span
}

// DurationMS reports the time from the span's start to now, in
// milliseconds. Span does not record when it ended, so the result does
// not stop at End.
func (s *Span) DurationMS(now time.Time) float64 {
	return float64(now.Sub(s.StartTime)) / float64(time.Millisecond)
}

// Tracer wires BTflow spans onto a real OTel SDK tracer, and a Bus that
// receives a span_start/span_end event for every span via a
// sdktrace.SpanProcessor bridge (processor.go). Because the underlying
// tracer is a genuine OTel SDK tracer, BTflow spans export to any
// configured OTel exporter in addition to driving the native Bus.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
	bus      *Bus
}

// NewTracer constructs a Tracer whose spans are also emitted as
// span_start/span_end events on bus.
func NewTracer(bus *Bus) *Tracer {
	processor := &busSpanProcessor{bus: bus}
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(processor))
	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer("btflow"),
		bus:      bus,
	}
}

// Bus returns the Tracer's event bus, for direct subscription or for
// non-span events (tool_call/tool_result) emitted outside a span.
func (t *Tracer) Bus() *Bus { return t.bus }

// Shutdown flushes and releases the underlying OTel provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// StartSpan starts a new span named name under ctx's current span (if
// any), attaching metadata as span attributes, and emits "span_start"
// on the bus. The returned end function must be called exactly once,
// with the error (if any) that terminated the span, to emit "span_end".
func (t *Tracer) StartSpan(ctx context.Context, name string, metadata map[string]any) (context.Context, *Span, func(error)) {
	attrs := make([]attribute.KeyValue, 0, len(metadata))
	for k, v := range metadata {
		attrs = append(attrs, attribute.String(k, toAttrString(v)))
	}

	newCtx, otelSpan := t.tracer.Start(ctx, name, oteltrace.WithAttributes(attrs...))
	sc := otelSpan.SpanContext()

	parentID := ""
	if parentSpan := oteltrace.SpanContextFromContext(ctx); parentSpan.IsValid() {
		parentID = parentSpan.SpanID().String()
	}

	span := &Span{
		ID:        sc.SpanID().String(),
		TraceID:   sc.TraceID().String(),
		ParentID:  parentID,
		Name:      name,
		StartTime: time.Now(),
		Metadata:  metadata,
		otelSpan:  otelSpan,
	}

	end := func(err error) {
		if err != nil {
			otelSpan.RecordError(err)
			otelSpan.SetStatus(codes.Error, err.Error())
		} else {
			otelSpan.SetStatus(codes.Ok, "")
		}
		otelSpan.End()
	}

	return newCtx, span, end
}

func toAttrString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", SafeSerialize(v))
}
