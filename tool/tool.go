// Package tool implements the BTflow tool-invocation subsystem: a single
// Tool contract, JSON-Schema-shaped input/output normalization, and a
// ToolRuntime that dispatches calls with schema-declared argument
// merging, linear-backoff retry, and trace/metric emission (spec.md §5).
package tool

import "context"

// Schema is a JSON-Schema-shaped description of a tool's input or output,
// represented as plain data rather than a generated struct, matching the
// way original_source/btflow/tools/base.py's Tool.input_schema/
// output_schema are bare dicts.
type Schema map[string]any

// retryableError marks an error a Tool returns to signal that ToolRuntime
// should retry the call (spec.md §4.10's "tool signals retryable"), rather
// than retrying every failure indiscriminately.
type retryableError struct{ err error }

func (r retryableError) Error() string { return r.err.Error() }
func (r retryableError) Unwrap() error { return r.err }
func (r retryableError) Retryable() bool { return true }

// Retryable wraps err so ToolRuntime.Call will retry the call (up to
// MaxRetries) instead of failing immediately.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err: err}
}

// IsRetryable reports whether err was produced by Retryable.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	for e := err; e != nil; {
		if x, ok := e.(interface{ Retryable() bool }); ok {
			r = x
			break
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return r != nil && r.Retryable()
}

// Tool is the contract every BTflow tool implements (spec.md §5.1),
// ported from original_source/btflow/tools/base.py's Tool ABC. Run
// receives already-normalized input (see SPEC_FULL.md §4.12 for how
// ToolRuntime decides whether that input is a single value or a map).
type Tool interface {
	Name() string
	Description() string
	InputSchema() Schema
	OutputSchema() Schema
	Run(ctx context.Context, input any) (any, error)
}

// isObjectSchema reports whether schema describes a JSON object (as
// opposed to a scalar/array), either by explicit "type": "object" or by
// the presence of a "properties" key with no explicit type (matching
// _normalize_parameters' schema_type is None and "properties" in schema
// branch).
func isObjectSchema(schema Schema) bool {
	if schema == nil {
		return false
	}
	if t, _ := schema["type"].(string); t == "object" {
		return true
	}
	if _, hasType := schema["type"]; !hasType {
		if _, hasProps := schema["properties"]; hasProps {
			return true
		}
	}
	return false
}

// NormalizeInputSchema wraps a non-object input schema under a single
// "input" property, matching Tool._normalize_parameters.
func NormalizeInputSchema(schema Schema) Schema {
	return normalizeAs(schema, "input")
}

// NormalizeOutputSchema wraps a non-object output schema under a single
// "output" property, matching Tool._normalize_output_schema.
func NormalizeOutputSchema(schema Schema) Schema {
	return normalizeAs(schema, "output")
}

func normalizeAs(schema Schema, wrapKey string) Schema {
	if isObjectSchema(schema) {
		out := make(Schema, len(schema)+2)
		for k, v := range schema {
			out[k] = v
		}
		if _, ok := out["type"]; !ok {
			out["type"] = "object"
		}
		if _, ok := out["properties"]; !ok {
			out["properties"] = Schema{}
		}
		return out
	}

	wrapped := Schema{"type": "string"}
	if schema != nil {
		wrapped = make(Schema, len(schema))
		for k, v := range schema {
			wrapped[k] = v
		}
	}
	return Schema{
		"type":       "object",
		"properties": Schema{wrapKey: wrapped},
		"required":   []string{wrapKey},
	}
}

// Spec returns a normalized descriptor for prompts/UIs/function-calling
// schemas, matching Tool.spec()/Tool.to_openai().
func Spec(t Tool) map[string]any {
	return map[string]any{
		"name":         t.Name(),
		"description":  t.Description(),
		"input_schema": t.InputSchema(),
		"output_schema": t.OutputSchema(),
		"parameters":   NormalizeInputSchema(t.InputSchema()),
		"returns":      NormalizeOutputSchema(t.OutputSchema()),
	}
}
