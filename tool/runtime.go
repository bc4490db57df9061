package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/btflow"
	"github.com/joeycumines/btflow/trace"
	"github.com/prometheus/client_golang/prometheus"
)

// injectedContextKey is the side channel used to pass injected values
// (e.g. a shared HTTP client, the current StateStore snapshot) to a tool
// running in single-arg mode, where there is no argument map to merge
// them into (SPEC_FULL.md §4.12).
type injectedContextKey struct{}

// WithInjected attaches injected to ctx for a single-arg-mode Tool.Run to
// retrieve via InjectedFromContext.
func WithInjected(ctx context.Context, injected map[string]any) context.Context {
	return context.WithValue(ctx, injectedContextKey{}, injected)
}

// InjectedFromContext returns the injected values attached by WithInjected,
// if any.
func InjectedFromContext(ctx context.Context) (map[string]any, bool) {
	v, ok := ctx.Value(injectedContextKey{}).(map[string]any)
	return v, ok
}

// callDurationMetric is registered lazily per ToolRuntime instance so
// multiple runtimes in tests don't collide on prometheus's default
// registry.
func newCallDurationMetric(registerer prometheus.Registerer) *prometheus.HistogramVec {
	m := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "btflow",
		Subsystem: "tool",
		Name:      "call_duration_seconds",
		Help:      "Duration of tool invocations, by tool name and outcome.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool", "outcome"})
	if registerer != nil {
		registerer.MustRegister(m)
	}
	return m
}

// ToolRuntime dispatches calls against a registered set of Tools,
// redesigning original_source/btflow/tools/execution.py's reflective
// get_call_mode/_merge_args (there is no Go runtime signature
// introspection to drive that) into a schema-declared dispatch: a Tool
// whose InputSchema is object-shaped receives a merged argument map
// (the map-arg / kwargs-equivalent mode); any other Tool receives its
// argument unchanged, with injected values passed via a context side
// channel (the single-arg mode). See SPEC_FULL.md §4.12.
type ToolRuntime struct {
	tools map[string]Tool

	MaxRetries     int
	RetryBackoff   time.Duration
	PreferInjected bool

	// ObservationFormat controls CallObservation's rendering: "text" (the
	// default) or "json". Any other value is treated as "text" by
	// Observation.Render, matching the Python original's self-correcting
	// fallback.
	ObservationFormat string

	tracer       *trace.Tracer
	callDuration *prometheus.HistogramVec
}

// NewToolRuntime returns an empty ToolRuntime. tracer and registerer may
// be nil to disable trace emission / metric registration respectively.
func NewToolRuntime(tracer *trace.Tracer, registerer prometheus.Registerer) *ToolRuntime {
	return &ToolRuntime{
		tools:             make(map[string]Tool),
		MaxRetries:        0,
		RetryBackoff:      100 * time.Millisecond,
		PreferInjected:    true,
		ObservationFormat: "text",
		tracer:            tracer,
		callDuration:      newCallDurationMetric(registerer),
	}
}

// Register adds t to the runtime, keyed by t.Name(). A later registration
// with the same name replaces the earlier one.
func (r *ToolRuntime) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Lookup returns the tool registered under name, if any.
func (r *ToolRuntime) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Call dispatches one tool invocation: it merges or side-channels
// injected per the tool's input schema shape, retries errors marked
// Retryable up to MaxRetries times with linear backoff (attempt*RetryBackoff), and emits
// tool_call/tool_result trace events plus a call-duration metric
// observation (spec.md §5.2, ported from execute_tool/_execute_action).
func (r *ToolRuntime) Call(ctx context.Context, name string, args any, injected map[string]any) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", btflow.ErrToolNotFound, name)
	}

	callArgs, callCtx := r.prepareCall(ctx, t, args, injected)

	var endSpan func(error)
	if r.tracer != nil {
		callCtx, _, endSpan = r.tracer.StartSpan(callCtx, "tool_call", map[string]any{
			"tool": name,
			"args": trace.SafeSerialize(callArgs),
		})
		r.tracer.Bus().Emit(trace.Event{Name: "tool_call", Payload: map[string]any{
			"tool": name,
			"args": trace.SafeSerialize(callArgs),
		}})
	}

	start := time.Now()
	result, err := r.callWithRetry(callCtx, t, callArgs)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if r.callDuration != nil {
		r.callDuration.WithLabelValues(name, outcome).Observe(time.Since(start).Seconds())
	}

	if endSpan != nil {
		endSpan(err)
	}
	if r.tracer != nil {
		payload := map[string]any{"tool": name, "outcome": outcome}
		if err != nil {
			payload["error"] = err.Error()
		} else {
			payload["result"] = trace.SafeSerialize(result)
		}
		r.tracer.Bus().Emit(trace.Event{Name: "tool_result", Payload: payload})
	}

	if err != nil {
		return nil, fmt.Errorf("%w: tool %q: %v", btflow.ErrToolExecution, name, err)
	}
	return result, nil
}

// CallObservation calls name via Call and renders the outcome as a
// normalized tool-message (spec.md §4.10's Observation step): Call errors
// (ToolNotFound, ToolExecutionError after exhausting retries) surface as
// Observation.OK == false rather than being returned separately, since an
// agent loop treats every tool outcome as an observation to feed back to
// the model rather than an exception to propagate (spec.md §7's
// "Tool errors are observations, not exceptions").
func (r *ToolRuntime) CallObservation(ctx context.Context, name string, args any, injected map[string]any) (Observation, string) {
	result, err := r.Call(ctx, name, args, injected)
	obs := NewObservation(name, result, err)
	format := r.ObservationFormat
	if format != "json" {
		format = "text"
	}
	return obs, obs.Render(format)
}

func (r *ToolRuntime) prepareCall(ctx context.Context, t Tool, args any, injected map[string]any) (any, context.Context) {
	if isObjectSchema(t.InputSchema()) {
		return r.mergeArgsAsMap(args, injected), ctx
	}
	return args, WithInjected(ctx, injected)
}

func (r *ToolRuntime) mergeArgsAsMap(args any, injected map[string]any) map[string]any {
	merged := make(map[string]any)
	if m, ok := args.(map[string]any); ok {
		for k, v := range m {
			merged[k] = v
		}
	} else if args != nil {
		merged["input"] = args
	}

	for k, v := range injected {
		if r.PreferInjected {
			merged[k] = v
		} else if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return merged
}

// callWithRetry retries only errors the tool marked via Retryable
// (spec.md §4.10: "on transient failure (tool signals retryable)"); any
// other error returns immediately.
func (r *ToolRuntime) callWithRetry(ctx context.Context, t Tool, args any) (any, error) {
	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result, err := t.Run(ctx, args)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt == r.MaxRetries || !IsRetryable(err) {
			break
		}
		select {
		case <-time.After(time.Duration(attempt+1) * r.RetryBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
