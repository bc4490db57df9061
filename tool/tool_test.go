package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeInputSchema_WrapsScalarUnderInput(t *testing.T) {
	t.Parallel()
	out := NormalizeInputSchema(Schema{"type": "string", "description": "x"})
	require.Equal(t, "object", out["type"])
	props := out["properties"].(Schema)
	require.Equal(t, Schema{"type": "string", "description": "x"}, props["input"])
	require.Equal(t, []string{"input"}, out["required"])
}

func TestNormalizeInputSchema_LeavesObjectSchemaAlone(t *testing.T) {
	t.Parallel()
	in := Schema{"type": "object", "properties": Schema{"a": Schema{"type": "string"}}}
	out := NormalizeInputSchema(in)
	require.Equal(t, "object", out["type"])
	props := out["properties"].(Schema)
	require.Contains(t, props, "a")
}

func TestNormalizeInputSchema_InfersObjectFromProperties(t *testing.T) {
	t.Parallel()
	in := Schema{"properties": Schema{"a": Schema{"type": "string"}}}
	out := NormalizeInputSchema(in)
	require.Equal(t, "object", out["type"])
}

func TestNormalizeOutputSchema_WrapsScalarUnderOutput(t *testing.T) {
	t.Parallel()
	out := NormalizeOutputSchema(Schema{"type": "string"})
	props := out["properties"].(Schema)
	require.Contains(t, props, "output")
}

func TestNormalizeInputSchema_NilSchemaWrapsEmptyString(t *testing.T) {
	t.Parallel()
	out := NormalizeInputSchema(nil)
	props := out["properties"].(Schema)
	require.Equal(t, Schema{"type": "string"}, props["input"])
}

// echoTool is a minimal Tool used across this package's tests. run, when
// set, overrides the default passthrough behaviour.
type echoTool struct {
	name   string
	input  Schema
	output Schema
	run    func(ctx context.Context, input any) (any, error)
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echo" }
func (e *echoTool) InputSchema() Schema  { return e.input }
func (e *echoTool) OutputSchema() Schema { return e.output }
func (e *echoTool) Run(ctx context.Context, input any) (any, error) {
	if e.run != nil {
		return e.run(ctx, input)
	}
	return input, nil
}

func TestSpec_IncludesNormalizedSchemas(t *testing.T) {
	t.Parallel()
	tl := &echoTool{name: "echo", input: Schema{"type": "string"}, output: Schema{"type": "string"}}
	spec := Spec(tl)
	require.Equal(t, "echo", spec["name"])
	params := spec["parameters"].(Schema)
	require.Equal(t, "object", params["type"])
}
