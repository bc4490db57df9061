package behavior

// ParallelPolicy selects when a Parallel composite resolves to a terminal
// status, independent of whether every child has finished. The four
// policies mirror py_trees' own Parallel success/failure strategies;
// DESIGN.md records the decision on how they interact with Synchronise.
type ParallelPolicy int

const (
	// SuccessOnAll requires every child to SUCCEED; a single FAILURE
	// fails the parallel immediately.
	SuccessOnAll ParallelPolicy = iota
	// SuccessOnOne succeeds as soon as any one child SUCCEEDS.
	SuccessOnOne
	// FailureOnAll requires every child to FAIL before the parallel
	// fails; a single SUCCESS succeeds the parallel immediately.
	FailureOnAll
	// FailureOnOne fails as soon as any one child FAILS.
	FailureOnOne
)

// Parallel ticks every child on every tick (subject to Synchronise) and
// resolves according to Policy (spec.md §3.3).
type Parallel struct {
	Composite
	Policy ParallelPolicy
	// Synchronise, when true, skips re-ticking a child that already
	// returned SUCCESS on a prior tick of this Parallel's current run
	// (reset on each fresh Initialise). This matches py_trees'
	// synchronise flag: children that finished early are held at
	// SUCCESS rather than re-evaluated every tick.
	Synchronise bool

	succeeded map[int]bool
}

// NewParallel returns a Parallel over the given children.
func NewParallel(name string, policy ParallelPolicy, synchronise bool, children ...Behavior) *Parallel {
	return &Parallel{
		Composite:   NewComposite(name, children...),
		Policy:      policy,
		Synchronise: synchronise,
	}
}

// Initialise resets the per-run synchronise bookkeeping.
func (p *Parallel) Initialise() {
	p.succeeded = make(map[int]bool, len(p.children))
}

// Update implements the Parallel tick (spec.md §3.3).
func (p *Parallel) Update() (Status, error) {
	successCount := 0
	failureCount := 0

	for i, child := range p.children {
		var status Status
		if p.Synchronise && p.succeeded[i] {
			status = Success
		} else {
			status = Tick(child)
			if status == Success {
				p.succeeded[i] = true
			}
		}

		switch status {
		case Success:
			successCount++
		case Failure:
			failureCount++
		}

		switch p.Policy {
		case SuccessOnOne:
			if status == Success {
				return Success, nil
			}
		case FailureOnOne:
			if status == Failure {
				return Failure, nil
			}
		}
	}

	switch p.Policy {
	case SuccessOnAll:
		if failureCount > 0 {
			return Failure, nil
		}
		if successCount == len(p.children) {
			return Success, nil
		}
	case FailureOnAll:
		if successCount > 0 {
			return Success, nil
		}
		if failureCount == len(p.children) {
			return Failure, nil
		}
	case SuccessOnOne:
		if failureCount == len(p.children) {
			return Failure, nil
		}
	case FailureOnOne:
		if successCount == len(p.children) {
			return Success, nil
		}
	}

	return Running, nil
}

// Terminate interrupts any still-RUNNING child and clears the
// synchronise bookkeeping for the next run.
func (p *Parallel) Terminate(s Status) {
	p.Composite.Terminate(s)
	p.succeeded = nil
}

// RestoreRunning repairs the Synchronise bookkeeping after a checkpoint
// restores this Parallel's status directly to RUNNING, bypassing
// Initialise (spec.md §4.7.1): succeeded is rebuilt from the children's
// restored statuses. If no child is INVALID or RUNNING — every child
// already met its terminal criterion — the Parallel is stopped at INVALID
// instead, since nothing remains for it to make progress on.
func (p *Parallel) RestoreRunning() {
	p.succeeded = make(map[int]bool, len(p.children))
	foundTarget := false
	for i, c := range p.children {
		if c.Status() == Success {
			p.succeeded[i] = true
		}
		if c.Status() == Invalid || c.Status() == Running {
			foundTarget = true
		}
	}
	if !foundTarget {
		p.Terminate(Invalid)
		p.SetStatus(Invalid)
	}
}
