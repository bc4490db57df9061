package behavior

import (
	"context"
	"sync"
)

// Behavior is the base contract every tree node satisfies: a stable name,
// a mutable status, an optional child set, and the initialise/update/
// terminate lifecycle (spec §3.2, §4.2).
//
// Implementations normally embed Base (for leaves, via Leaf) rather than
// implementing Name/Status/SetStatus directly.
type Behavior interface {
	// Name is the node's stable identifier, used for checkpoint
	// tree_state keys (§3.5) and diagnostics. Must be unique within a
	// tree for checkpoint restore to work correctly.
	Name() string
	// Status returns the node's current status.
	Status() Status
	// SetStatus records a new status. Called by Tick; also used by
	// checkpoint restore and composite/decorator termination cascades.
	SetStatus(Status)
	// Children returns the node's children, or nil for a leaf.
	Children() []Behavior
	// Initialise is called once when the node transitions from a
	// non-RUNNING status into active ticking.
	Initialise()
	// Update performs one tick's worth of work and returns the new
	// status. A non-nil error is treated as a NodeInternalError: the
	// caller (Tick) forces status to FAILURE and, if the node implements
	// FeedbackSetter, records err.Error() as feedback.
	Update() (Status, error)
	// Terminate is called when the node's status becomes terminal
	// (SUCCESS or FAILURE), or when a composite/decorator forces a
	// RUNNING child to INVALID on interrupt/restore.
	Terminate(Status)
}

// FeedbackSetter is implemented by nodes that record a human-readable
// diagnostic message (spec §3.2 feedback_message).
type FeedbackSetter interface {
	SetFeedbackMessage(string)
}

// FeedbackGetter is the read side of FeedbackSetter.
type FeedbackGetter interface {
	FeedbackMessage() string
}

// Setuper is implemented by nodes that need one-time setup with a bounded
// timeout (spec §4.6 Tree.setup). The context carries the overall setup
// deadline; Setup should return promptly on ctx.Done().
type Setuper interface {
	Setup(ctx context.Context) error
}

// Base provides the Name/Status/SetStatus/feedback-message plumbing shared
// by every concrete node type. It is not itself a complete Behavior: it
// has no Children/Initialise/Update/Terminate.
type Base struct {
	name string

	mu       sync.Mutex
	status   Status
	feedback string
}

// NewBase returns a Base with the given stable name and an initial status
// of Invalid (never run).
func NewBase(name string) Base {
	return Base{name: name, status: Invalid}
}

// Name returns the node's stable name.
func (b *Base) Name() string { return b.name }

// Status returns the node's current status.
func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// SetStatus records a new status.
func (b *Base) SetStatus(s Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

// FeedbackMessage returns the last diagnostic message set via
// SetFeedbackMessage, or "" if none.
func (b *Base) FeedbackMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.feedback
}

// SetFeedbackMessage records a diagnostic message (spec §3.2).
func (b *Base) SetFeedbackMessage(msg string) {
	b.mu.Lock()
	b.feedback = msg
	b.mu.Unlock()
}

// Leaf is the base for childless nodes: it supplies no-op Initialise and
// Terminate, suitable for stateless leaves. Stateful leaves (e.g.
// AsyncLeaf) override these.
type Leaf struct {
	Base
}

// NewLeaf returns a Leaf with the given stable name.
func NewLeaf(name string) Leaf {
	return Leaf{Base: NewBase(name)}
}

// Children always returns nil for a leaf.
func (l *Leaf) Children() []Behavior { return nil }

// Initialise is a no-op for a stateless leaf.
func (l *Leaf) Initialise() {}

// Terminate is a no-op for a stateless leaf.
func (l *Leaf) Terminate(Status) {}

// feedbackSetter mirrors FeedbackSetter's single method; declared here for
// the internal type assertion used by Tick.
type feedbackSetter interface {
	SetFeedbackMessage(string)
}

var _ feedbackSetter = (*Base)(nil)

// Tick executes one full lifecycle pass over b (spec §4.2):
//  1. If b.Status() != RUNNING, call b.Initialise().
//  2. Call b.Update(). A returned error forces FAILURE and records
//     feedback if supported (NodeInternalError, spec §7).
//  3. If the resulting status is terminal (SUCCESS or FAILURE), call
//     b.Terminate(status).
//  4. Record the new status via b.SetStatus.
//
// Composites and decorators call Tick on each child they visit, so every
// node in the tree — not just leaves — goes through the same lifecycle.
func Tick(b Behavior) Status {
	if b.Status() != Running {
		b.Initialise()
	}

	newStatus, err := b.Update()
	if err != nil {
		newStatus = Failure
		if fs, ok := b.(feedbackSetter); ok {
			fs.SetFeedbackMessage(err.Error())
		}
	}

	if newStatus.Terminal() {
		b.Terminate(newStatus)
	}

	b.SetStatus(newStatus)
	return newStatus
}

// Interrupt forces b, and recursively any RUNNING descendant, to INVALID.
// Used by Tree.Interrupt and by the Runner on cancellation/restore.
func Interrupt(b Behavior) {
	if b.Status() == Running {
		b.Terminate(Invalid)
	}
	b.SetStatus(Invalid)
	for _, c := range b.Children() {
		Interrupt(c)
	}
}

// StateBinder is implemented by nodes that accept a shared state store,
// injected once at Runner construction (spec §4.7, §6.1). The store type
// is declared as `any` here to avoid a package dependency from behavior on
// state; concrete node types (e.g. LoopUntilSuccess) type-assert the
// methods they need from the value they are given.
type StateBinder interface {
	BindStateStore(store any)
}

// WakeBinder is implemented by nodes (AsyncLeaf) that need the Runner's
// wake callback bound at construction (spec §4.7, §6.1).
type WakeBinder interface {
	BindWakeUp(func())
}

// Restorable is implemented by composite nodes (Sequence, Selector,
// Parallel) whose internal scan-resume bookkeeping must be repaired after
// a checkpoint restore sets their status directly to RUNNING without
// going through Initialise (spec §4.7.1).
type Restorable interface {
	Behavior
	RestoreRunning()
}
