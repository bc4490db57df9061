package tool

import "encoding/json"

// Observation is the normalized tool-message ToolRuntime produces after a
// call completes (spec.md §4.10: "{tool, ok, output|error} in either text
// or json form"), ported from original_source/btflow/nodes/builtin/
// agent_tools.py's _normalize_tool_result.
type Observation struct {
	Tool   string `json:"tool"`
	OK     bool   `json:"ok"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewObservation builds an Observation from a call's raw result and error.
func NewObservation(toolName string, result any, err error) Observation {
	o := Observation{Tool: toolName, OK: err == nil}
	if err != nil {
		o.Error = err.Error()
	} else {
		o.Output = result
	}
	return o
}

// Render renders o as a tool-message body in the given format. "json"
// always marshals the full {tool, ok, output, error} payload. Any other
// value is treated as "text": an error renders as its bare message, a
// string result renders as itself, and anything else falls back to the
// json payload (matching the Python original's same three-way branch).
func (o Observation) Render(format string) string {
	if format == "json" {
		return o.jsonPayload()
	}
	if !o.OK {
		return o.Error
	}
	if s, ok := o.Output.(string); ok {
		return s
	}
	return o.jsonPayload()
}

func (o Observation) jsonPayload() string {
	b, err := json.Marshal(o)
	if err != nil {
		return o.Error
	}
	return string(b)
}
