package behavior

import (
	"context"
	"fmt"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
)

// Visitor observes every node in a tree once per Tree.Tick, in pre-order
// (spec.md §4.6). Initialise/Finalise bracket the walk; Visit is called
// once per node.
type Visitor interface {
	Initialise()
	Visit(node Behavior)
	Finalise()
}

// Tree owns a root Behavior and drives it one tick at a time. It has no
// notion of "the" tree beyond its root's children graph — Iterate walks
// that graph fresh on each call rather than maintaining a separate arena,
// per DESIGN.md's simplified no-parent-pointers decision.
type Tree struct {
	root     Behavior
	visitors []Visitor
}

// NewTree returns a Tree rooted at root.
func NewTree(root Behavior) *Tree {
	return &Tree{root: root}
}

// Root returns the tree's root node.
func (t *Tree) Root() Behavior { return t.root }

// AddVisitor registers v to run after every Tick call.
func (t *Tree) AddVisitor(v Visitor) {
	t.visitors = append(t.visitors, v)
}

// Iterate returns every node in the tree in pre-order (root first).
func (t *Tree) Iterate() []Behavior {
	var out []Behavior
	var walk func(Behavior)
	walk = func(b Behavior) {
		out = append(out, b)
		for _, c := range b.Children() {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// Setup calls Setup(ctx) on every node that implements Setuper, in
// pre-order, bounded by timeout if timeout > 0 (spec.md §4.6). It returns
// the first error encountered, wrapped with the failing node's name.
func (t *Tree) Setup(timeout time.Duration) error {
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	for _, node := range t.Iterate() {
		s, ok := node.(Setuper)
		if !ok {
			continue
		}
		if err := s.Setup(ctx); err != nil {
			return fmt.Errorf("behavior: setup %q: %w", node.Name(), err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("behavior: setup timed out at %q: %w", node.Name(), ctx.Err())
		}
	}
	return nil
}

// Tick ticks the root once and runs every registered visitor over the
// resulting tree state.
func (t *Tree) Tick() Status {
	status := Tick(t.root)
	for _, v := range t.visitors {
		v.Initialise()
		for _, node := range t.Iterate() {
			v.Visit(node)
		}
		v.Finalise()
	}
	return status
}

// Interrupt forces the whole tree to INVALID, cascading through any
// RUNNING descendant (spec.md §4.6).
func (t *Tree) Interrupt() {
	Interrupt(t.root)
}

// AsNode adapts the tree's root into a github.com/joeycumines/go-behaviortree
// bt.Node, so BTflow trees can be driven by that library's own scheduling
// infrastructure (bt.Ticker, bt.Manager) alongside native Go callers that
// just call Tree.Tick directly. The adaptation is one-directional and
// lossy: go-behaviortree's bt.Status has only three values, so INVALID
// collapses to bt.Failure at this boundary (SPEC_FULL.md §3.9); BTflow's
// own Status, recorded on each Behavior via SetStatus, remains the
// authoritative four-value record regardless of how the tree is driven.
func (t *Tree) AsNode() bt.Node {
	return adaptNode(t.root)
}

func adaptNode(b Behavior) bt.Node {
	return func() (bt.Tick, []bt.Node) {
		tick := func([]bt.Node) (bt.Status, error) {
			return toBTStatus(Tick(b)), nil
		}
		children := b.Children()
		if len(children) == 0 {
			return tick, nil
		}
		nodes := make([]bt.Node, len(children))
		for i, c := range children {
			nodes[i] = adaptNode(c)
		}
		return tick, nodes
	}
}

func toBTStatus(s Status) bt.Status {
	switch s {
	case Running:
		return bt.Running
	case Success:
		return bt.Success
	default:
		// Failure and Invalid both collapse to bt.Failure: go-behaviortree
		// has no fourth value (SPEC_FULL.md §3.9).
		return bt.Failure
	}
}
