package behavior

import (
	"context"
	"sync"
)

// UpdateAsyncFunc is the user-supplied body of an AsyncLeaf. It runs on
// its own goroutine and should return promptly after ctx is cancelled.
type UpdateAsyncFunc func(ctx context.Context) (Status, error)

type asyncState int

const (
	asyncIdle asyncState = iota
	asyncRunning
	asyncCompleted
)

// AsyncLeaf bridges a long-running, cancellable Go function into the
// synchronous Tick lifecycle (spec.md §4.3). Each Initialise cancels any
// still-in-flight prior invocation and starts a fresh one on a new
// goroutine, tagged with a generation number so a late-arriving result
// from a cancelled invocation is discarded rather than corrupting a newer
// run's state. This is a direct port of the teacher's JSLeafAdapter
// (internal/builtin/bt/adapter.go), generalised from a goja call to an
// arbitrary Go closure.
type AsyncLeaf struct {
	Leaf
	Update_ UpdateAsyncFunc

	mu         sync.Mutex
	state      asyncState
	generation uint64
	cancel     context.CancelFunc
	result     Status
	resultErr  error
	wake       func()
}

// NewAsyncLeaf returns an AsyncLeaf named name running fn on each fresh
// Initialise.
func NewAsyncLeaf(name string, fn UpdateAsyncFunc) *AsyncLeaf {
	l := NewLeaf(name)
	return &AsyncLeaf{Leaf: l, Update_: fn}
}

// BindWakeUp satisfies behavior.WakeBinder: the Runner injects its
// coalescing wake callback so a background completion can prompt an
// immediate re-tick instead of waiting for the next poll (spec.md §4.7).
func (a *AsyncLeaf) BindWakeUp(wake func()) {
	a.mu.Lock()
	a.wake = wake
	a.mu.Unlock()
}

// Initialise cancels any in-flight invocation and starts a new one.
func (a *AsyncLeaf) Initialise() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	a.state = asyncRunning
	a.result = Invalid
	a.resultErr = nil

	if a.Update_ == nil {
		a.state = asyncCompleted
		a.result = Failure
		a.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.mu.Unlock()

	go a.run(ctx, gen)
}

func (a *AsyncLeaf) run(ctx context.Context, gen uint64) {
	var status Status
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				status = Failure
				err = panicError{r}
			}
		}()
		status, err = a.Update_(ctx)
	}()
	a.finalize(gen, ctx, status, err)
}

func (a *AsyncLeaf) finalize(gen uint64, ctx context.Context, status Status, err error) {
	a.mu.Lock()
	if gen != a.generation {
		// Stale: a newer Initialise has already superseded this run.
		a.mu.Unlock()
		return
	}

	switch {
	case ctx.Err() != nil:
		a.result = Invalid
		a.resultErr = nil
	case err != nil:
		a.result = Failure
		a.resultErr = err
	default:
		a.result = status
		a.resultErr = nil
	}
	a.state = asyncCompleted
	wake := a.wake
	a.mu.Unlock()

	if wake != nil {
		wake()
	}
}

// Update reports the async invocation's current state (spec.md §4.3): no
// task bound or idle maps to FAILURE (see DESIGN.md's Open Question
// decision), RUNNING while in flight, and the stored result once
// completed.
func (a *AsyncLeaf) Update() (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case asyncRunning:
		return Running, nil
	case asyncCompleted:
		return a.result, a.resultErr
	default:
		return Failure, nil
	}
}

// Terminate cancels any in-flight invocation and resets to idle so a
// subsequent Initialise starts clean. The generation is bumped before the
// state reset, the same way Initialise bumps it, so a finalize call from
// the just-cancelled goroutine (already past its ctx.Err() check, or
// racing finalize's lock) is discarded as stale instead of applying a
// result or waking after termination.
func (a *AsyncLeaf) Terminate(Status) {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.generation++
	a.state = asyncIdle
	a.mu.Unlock()
}

// panicError wraps a recovered panic value as an error.
type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return "panic: " + err.Error()
	}
	return "panic in async leaf update"
}
