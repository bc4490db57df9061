package behavior

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type setupLeaf struct {
	Leaf
	setupErr error
	setupOK  bool
}

func (s *setupLeaf) Setup(ctx context.Context) error {
	s.setupOK = true
	return s.setupErr
}

func (s *setupLeaf) Update() (Status, error) { return Success, nil }

func TestTree_IterateIsPreOrder(t *testing.T) {
	t.Parallel()
	a := constLeaf("a", Success)
	b := constLeaf("b", Success)
	seq := NewSequence("seq", false, a, b)
	tree := NewTree(seq)

	names := make([]string, 0, 3)
	for _, n := range tree.Iterate() {
		names = append(names, n.Name())
	}
	require.Equal(t, []string{"seq", "a", "b"}, names)
}

func TestTree_SetupRunsOnEverySetuper(t *testing.T) {
	t.Parallel()
	l1 := &setupLeaf{Leaf: NewLeaf("l1")}
	l2 := &setupLeaf{Leaf: NewLeaf("l2")}
	seq := NewSequence("seq", false, l1, l2)
	tree := NewTree(seq)

	require.NoError(t, tree.Setup(time.Second))
	require.True(t, l1.setupOK)
	require.True(t, l2.setupOK)
}

func TestTree_SetupPropagatesError(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("setup failed")
	l1 := &setupLeaf{Leaf: NewLeaf("l1"), setupErr: wantErr}
	tree := NewTree(l1)

	err := tree.Setup(time.Second)
	require.Error(t, err)
	require.ErrorIs(t, err, wantErr)
}

func TestTree_TickReturnsRootStatus(t *testing.T) {
	t.Parallel()
	tree := NewTree(constLeaf("a", Success))
	require.Equal(t, Success, tree.Tick())
}

func TestTree_VisitorSeesEveryNode(t *testing.T) {
	t.Parallel()
	a := constLeaf("a", Success)
	b := constLeaf("b", Success)
	tree := NewTree(NewSequence("seq", false, a, b))

	var visited []string
	tree.AddVisitor(&recordingVisitor{out: &visited})
	tree.Tick()
	require.Equal(t, []string{"seq", "a", "b"}, visited)
}

type recordingVisitor struct {
	out *[]string
}

func (r *recordingVisitor) Initialise() { *r.out = nil }
func (r *recordingVisitor) Visit(node Behavior) {
	*r.out = append(*r.out, node.Name())
}
func (r *recordingVisitor) Finalise() {}

func TestTree_InterruptResetsRunningTree(t *testing.T) {
	t.Parallel()
	child := newScriptedLeaf("child", scriptResult{Running, nil})
	seq := NewSequence("seq", true, child)
	tree := NewTree(seq)

	require.Equal(t, Running, tree.Tick())
	tree.Interrupt()
	require.Equal(t, Invalid, seq.Status())
	require.Equal(t, Invalid, child.Status())
}

func TestTree_AsNodeAdaptsStatus(t *testing.T) {
	t.Parallel()
	tree := NewTree(constLeaf("a", Success))
	node := tree.AsNode()
	tick, children := node()
	require.Nil(t, children)
	status, err := tick(nil)
	require.NoError(t, err)
	require.Equal(t, toBTStatus(Success), status)
}
