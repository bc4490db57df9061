package behavior

// Decorator is the base for single-child wrapper nodes (LoopUntilSuccess,
// Inverter). Like Composite, it holds its child by value with no parent
// back-reference.
type Decorator struct {
	Base
	Child Behavior
}

// NewDecorator returns a Decorator wrapping child.
func NewDecorator(name string, child Behavior) Decorator {
	return Decorator{Base: NewBase(name), Child: child}
}

// Children returns the single wrapped child.
func (d *Decorator) Children() []Behavior {
	if d.Child == nil {
		return nil
	}
	return []Behavior{d.Child}
}

// Terminate interrupts the child if it is still RUNNING.
func (d *Decorator) Terminate(Status) {
	if d.Child != nil && d.Child.Status() == Running {
		Interrupt(d.Child)
	}
}

// Placeholder is a leaf that always fails. It stands in for an unbound
// child slot at tree-construction time (spec.md §3.4's LoopUntilSuccess
// uses one until a real child is attached).
type Placeholder struct {
	Leaf
}

// NewPlaceholder returns a Placeholder with the given name.
func NewPlaceholder(name string) *Placeholder {
	l := NewLeaf(name)
	return &Placeholder{Leaf: l}
}

// Update always reports FAILURE.
func (p *Placeholder) Update() (Status, error) {
	return Failure, nil
}

// Inverter flips SUCCESS and FAILURE, passing RUNNING and INVALID through
// unchanged. Not named in spec.md's module list but a standard py_trees
// decorator included here because LoopUntilSuccess's "retry" semantics are
// naturally complemented by an explicit negation decorator elsewhere in a
// tree, and the teacher's own require.go exposes bt.Not for the same
// reason.
type Inverter struct {
	Decorator
}

// NewInverter returns an Inverter wrapping child.
func NewInverter(name string, child Behavior) *Inverter {
	d := NewDecorator(name, child)
	return &Inverter{Decorator: d}
}

// Initialise is a no-op; the child's own Initialise happens via Tick.
func (n *Inverter) Initialise() {}

// Update ticks the child and inverts SUCCESS/FAILURE.
func (n *Inverter) Update() (Status, error) {
	status := Tick(n.Child)
	switch status {
	case Success:
		return Failure, nil
	case Failure:
		return Success, nil
	default:
		return status, nil
	}
}
