package behavior

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaceholder_AlwaysFails(t *testing.T) {
	t.Parallel()
	p := NewPlaceholder("ph")
	require.Equal(t, Failure, Tick(p))
	require.Equal(t, Failure, Tick(p))
}

func TestInverter_FlipsSuccessAndFailure(t *testing.T) {
	t.Parallel()
	child := constLeaf("child", Success)
	inv := NewInverter("inv", child)
	require.Equal(t, Failure, Tick(inv))

	child2 := constLeaf("child2", Failure)
	inv2 := NewInverter("inv2", child2)
	require.Equal(t, Success, Tick(inv2))
}

func TestInverter_PassesThroughRunning(t *testing.T) {
	t.Parallel()
	child := newScriptedLeaf("child", scriptResult{Running, nil})
	inv := NewInverter("inv", child)
	require.Equal(t, Running, Tick(inv))
}

func TestDecorator_TerminateInterruptsRunningChild(t *testing.T) {
	t.Parallel()
	child := newScriptedLeaf("child", scriptResult{Running, nil})
	Tick(child)
	d := NewDecorator("d", child)
	d.Terminate(Failure)
	require.Equal(t, []Status{Invalid}, child.termArg)
}
