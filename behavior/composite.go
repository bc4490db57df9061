package behavior

// Composite is the base for multi-child nodes (Sequence, Selector,
// Parallel). It owns its children by value — there is no parent
// back-reference (see DESIGN.md's "no parent back-references" decision) —
// and supplies the Terminate behavior shared by all composites: any child
// still RUNNING when the composite itself goes terminal is interrupted to
// INVALID.
type Composite struct {
	Base
	children []Behavior
}

// NewComposite returns a Composite with the given name and children.
func NewComposite(name string, children ...Behavior) Composite {
	return Composite{Base: NewBase(name), children: children}
}

// Children returns the composite's children in tick order.
func (c *Composite) Children() []Behavior { return c.children }

// Terminate interrupts any child left RUNNING. Composites that need
// additional cleanup (Parallel) call this via an embedded Composite and
// may add their own bookkeeping alongside it.
func (c *Composite) Terminate(Status) {
	for _, child := range c.children {
		if child.Status() == Running {
			Interrupt(child)
		}
	}
}

// Sequence ticks children in order starting at the last one that
// returned RUNNING (if Memory) or always from the first child (if not
// Memory, i.e. a "reactive" sequence, spec.md §3.3). It returns FAILURE as
// soon as any child fails, RUNNING while a child is still in progress, and
// SUCCESS once every child has succeeded on the current pass.
type Sequence struct {
	Composite
	// Memory selects the non-reactive variant: once a child reaches
	// RUNNING, later ticks resume from that child instead of
	// re-evaluating already-SUCCESS children from index 0.
	Memory  bool
	current int
}

// NewSequence returns a Sequence over the given children.
func NewSequence(name string, memory bool, children ...Behavior) *Sequence {
	return &Sequence{Composite: NewComposite(name, children...), Memory: memory}
}

// Initialise resets the scan position. A memory Sequence only resets when
// entering fresh (Tick already guarantees Initialise is only called when
// Status != Running, so this is always a fresh entry).
func (s *Sequence) Initialise() {
	s.current = 0
}

// RestoreRunning repairs the scan-resume position after a checkpoint
// restores this Sequence's status directly to RUNNING (bypassing
// Initialise, since Tick only calls Initialise on a non-RUNNING entry,
// spec.md §4.7.1). current is set to the first child not yet SUCCESS; if
// every child already succeeded, the Sequence is stopped at INVALID
// instead so the next tick re-evaluates it from scratch.
func (s *Sequence) RestoreRunning() {
	for i, c := range s.children {
		if c.Status() != Success {
			s.current = i
			return
		}
	}
	s.Terminate(Invalid)
	s.SetStatus(Invalid)
}

// Update implements the Sequence tick (spec.md §3.3).
func (s *Sequence) Update() (Status, error) {
	start := 0
	if s.Memory {
		start = s.current
	}
	for i := start; i < len(s.children); i++ {
		child := s.children[i]
		status := Tick(child)
		switch status {
		case Running:
			s.current = i
			return Running, nil
		case Failure:
			s.current = 0
			return Failure, nil
		case Success:
			continue
		default:
			s.current = i
			return Running, nil
		}
	}
	s.current = 0
	return Success, nil
}

// Selector ticks children in order and returns SUCCESS as soon as any
// child succeeds, FAILURE only once every child has failed, and RUNNING
// while a child is in progress (spec.md §3.3, the dual of Sequence).
type Selector struct {
	Composite
	Memory  bool
	current int
}

// NewSelector returns a Selector over the given children.
func NewSelector(name string, memory bool, children ...Behavior) *Selector {
	return &Selector{Composite: NewComposite(name, children...), Memory: memory}
}

// Initialise resets the scan position.
func (s *Selector) Initialise() {
	s.current = 0
}

// RestoreRunning repairs the scan-resume position after a checkpoint
// restores this Selector's status directly to RUNNING (spec.md §4.7.1).
// current is set to the first child not yet FAILURE; if every child
// already failed, the Selector is stopped at INVALID instead.
func (s *Selector) RestoreRunning() {
	for i, c := range s.children {
		if c.Status() != Failure {
			s.current = i
			return
		}
	}
	s.Terminate(Invalid)
	s.SetStatus(Invalid)
}

// Update implements the Selector tick (spec.md §3.3).
func (s *Selector) Update() (Status, error) {
	start := 0
	if s.Memory {
		start = s.current
	}
	for i := start; i < len(s.children); i++ {
		child := s.children[i]
		status := Tick(child)
		switch status {
		case Running:
			s.current = i
			return Running, nil
		case Success:
			s.current = 0
			return Success, nil
		case Failure:
			continue
		default:
			s.current = i
			return Running, nil
		}
	}
	s.current = 0
	return Failure, nil
}
