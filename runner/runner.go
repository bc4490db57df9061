// Package runner implements ReactiveRunner, BTflow's event-driven tick
// scheduler (spec.md §4.7), ported from
// original_source/btflow/core/runtime.py's ReactiveRunner.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/btflow"
	"github.com/joeycumines/btflow/behavior"
	"github.com/joeycumines/btflow/checkpoint"
	"github.com/joeycumines/btflow/internal/goroutineid"
	"github.com/joeycumines/btflow/state"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxFPS is used when RunOptions.MaxFPS is zero (spec.md §4.7's
// max_fps=60.0 default).
const DefaultMaxFPS = 60.0

// DefaultSetupTimeout bounds NewRunner's Tree.Setup walk when the caller
// passes zero.
const DefaultSetupTimeout = 15 * time.Second

// ReactiveRunner binds a behavior.Tree to a state.StateStore and drives it
// tick by tick, either synchronously one tick at a time (TickOnce, for
// AgentFacade.step) or continuously in response to a coalescing wake
// signal (Run, for AgentFacade.run).
type ReactiveRunner struct {
	tree  *behavior.Tree
	store *state.StateStore

	unsubscribe func()

	tickSignal chan struct{} // capacity 1: coalescing (spec.md §4.7.2)

	mu          sync.Mutex
	autoDriving bool

	// tickingGoroutine records which goroutine is currently inside
	// TickOnce's call to tree.Tick, or 0 if none. A call to TickOnce from
	// that same goroutine (an AsyncLeaf completion callback or a state
	// subscriber re-entering the runner mid-tick) ticks directly instead
	// of blocking on tickMu, which it would otherwise deadlock against.
	// Grounded on internal/builtin/bt/bridge.go's TryRunOnLoopSync
	// goroutine-ID check.
	tickMu           sync.Mutex
	tickingGoroutine atomic.Int64

	metrics *runnerMetrics
}

// NewRunner constructs a ReactiveRunner over tree and store: it calls
// tree.Setup(setupTimeout) (0 uses DefaultSetupTimeout), walks every node
// injecting store into any behavior.StateBinder and binding the wake
// callback on any behavior.WakeBinder, and subscribes to store so any
// update can trigger a tick while auto-driving (spec.md §4.7).
//
// registerer may be nil to disable metrics collection.
func NewRunner(tree *behavior.Tree, store *state.StateStore, setupTimeout time.Duration, registerer prometheus.Registerer) (*ReactiveRunner, error) {
	if setupTimeout <= 0 {
		setupTimeout = DefaultSetupTimeout
	}
	if err := tree.Setup(setupTimeout); err != nil {
		return nil, fmt.Errorf("runner: setup: %w", err)
	}

	r := &ReactiveRunner{
		tree:       tree,
		store:      store,
		tickSignal: make(chan struct{}, 1),
		metrics:    newRunnerMetrics(registerer),
	}

	for _, node := range tree.Iterate() {
		if sb, ok := node.(behavior.StateBinder); ok {
			sb.BindStateStore(store)
		}
		if wb, ok := node.(behavior.WakeBinder); ok {
			wb.BindWakeUp(r.wake)
		}
	}

	r.unsubscribe = store.Subscribe(func([]string) { r.wake() })

	return r, nil
}

// Tree returns the behavior.Tree this runner drives, for callers (such as
// agent.AgentFacade) that need to interrupt or inspect it directly.
func (r *ReactiveRunner) Tree() *behavior.Tree { return r.tree }

// Store returns the state.StateStore this runner drives.
func (r *ReactiveRunner) Store() *state.StateStore { return r.store }

// DisableAutoDriving turns off the coalescing wake signal's gate, so state
// updates and AsyncLeaf completions stop enqueuing ticks. Run always
// disables it on exit; AgentFacade.Step calls this defensively before a
// forced tick, matching the Python original's explicit
// `self.runner.auto_driving = False` at the top of step().
func (r *ReactiveRunner) DisableAutoDriving() {
	r.mu.Lock()
	r.autoDriving = false
	r.mu.Unlock()
}

// ClearSignal drains any pending coalesced tick signal without ticking.
// Used by AgentFacade.Run to discard a stale wake before injecting input
// (spec.md §4.8 run step 3), so a signal left over from a previous run
// doesn't fire an extra tick before the fresh input arrives.
func (r *ReactiveRunner) ClearSignal() {
	select {
	case <-r.tickSignal:
	default:
	}
}

// wake sets the coalescing tick signal, but only while auto-driving
// (spec.md §4.7.2): a burst of state updates or AsyncLeaf completions
// collapses into a single pending tick.
func (r *ReactiveRunner) wake() {
	r.mu.Lock()
	driving := r.autoDriving
	r.mu.Unlock()
	if !driving {
		return
	}
	select {
	case r.tickSignal <- struct{}{}:
	default:
	}
}

// TickOnce ticks the tree exactly once and returns the root's resulting
// status. It does not read or write the tick signal (spec.md §4.7). Safe
// to call concurrently with Run, and safe to call reentrantly from a
// callback invoked during a tick already in progress on the calling
// goroutine (an AsyncLeaf's wake callback, a state subscriber).
func (r *ReactiveRunner) TickOnce() behavior.Status {
	current := goroutineid.Get()
	if current != 0 && r.tickingGoroutine.Load() == current {
		return r.tree.Tick()
	}

	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	r.tickingGoroutine.Store(current)
	defer r.tickingGoroutine.Store(0)
	return r.tree.Tick()
}

// RunOptions configures ReactiveRunner.Run.
type RunOptions struct {
	// MaxTicks circuit-breaks the loop after this many ticks if the root
	// has not reached a terminal status. Zero means unbounded.
	MaxTicks int
	// Checkpointer, if non-nil, is consulted for a restore at the start
	// of Run and written to every CheckpointInterval ticks.
	Checkpointer *checkpoint.Checkpointer
	// CheckpointInterval is the tick interval between saves. Zero is
	// treated as 1 (save every tick) when Checkpointer is set.
	CheckpointInterval int
	// ThreadID identifies the checkpoint stream. Required if Checkpointer
	// is set.
	ThreadID string
	// MaxFPS bounds the tick rate via a throttle sleep. Zero uses
	// DefaultMaxFPS.
	MaxFPS float64
}

// Run drives the tree reactively until the root reaches SUCCESS or
// FAILURE, ctx is cancelled, or MaxTicks is reached (spec.md §4.7). On any
// exit path it disables auto-driving, unsubscribes from the state store,
// unbinds every node's wake callback, and interrupts the tree — mirroring
// the Python original's finally block.
func (r *ReactiveRunner) Run(ctx context.Context, opts RunOptions) error {
	maxFPS := opts.MaxFPS
	if maxFPS <= 0 {
		maxFPS = DefaultMaxFPS
	}
	checkpointInterval := opts.CheckpointInterval
	if checkpointInterval <= 0 {
		checkpointInterval = 1
	}

	r.mu.Lock()
	r.autoDriving = true
	r.mu.Unlock()

	defer r.cleanup()

	if opts.Checkpointer != nil {
		cp, err := opts.Checkpointer.LoadLatest(opts.ThreadID)
		if err != nil {
			return fmt.Errorf("runner: load checkpoint: %w", err)
		}
		if cp != nil {
			if err := r.restore(cp); err != nil {
				return fmt.Errorf("runner: restore: %w", err)
			}
		}
	}

	minTickInterval := time.Duration(float64(time.Second) / maxFPS)
	hotLoopThreshold := int(maxFPS * 1.5)

	// Fire the first tick unconditionally so the tree runs at least once
	// even if nothing has touched the state store yet.
	select {
	case r.tickSignal <- struct{}{}:
	default:
	}

	threadID := opts.ThreadID
	tickCount := 0
	windowStart := time.Now()
	windowTicks := 0
	warnedThisWindow := false

	for {
		if opts.MaxTicks > 0 && tickCount >= opts.MaxTicks {
			return btflow.ErrMaxTicksExceeded
		}

		select {
		case <-r.tickSignal:
		case <-ctx.Done():
			return ctx.Err()
		}

		tickStart := time.Now()
		status := r.TickOnce()
		tickCount++
		if r.metrics != nil {
			r.metrics.ticks.WithLabelValues(threadID).Inc()
		}

		elapsed := time.Since(tickStart)
		if elapsed < minTickInterval {
			select {
			case <-time.After(minTickInterval - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			runtime.Gosched()
		}

		windowTicks++
		if time.Since(windowStart) >= time.Second {
			windowStart = time.Now()
			windowTicks = 0
			warnedThisWindow = false
		} else if windowTicks > hotLoopThreshold && !warnedThisWindow {
			warnedThisWindow = true
			if r.metrics != nil {
				r.metrics.hotLoopWarnings.WithLabelValues(threadID).Inc()
			}
			slog.Warn("runner: hot loop detected", "thread_id", threadID, "ticks_this_window", windowTicks, "threshold", hotLoopThreshold)
		}

		if opts.Checkpointer != nil && tickCount%checkpointInterval == 0 {
			if err := r.saveCheckpoint(opts.Checkpointer, threadID, tickCount); err != nil {
				slog.Error("runner: checkpoint save failed", "thread_id", threadID, "error", err)
			}
		}

		if status.Terminal() {
			return nil
		}
	}
}

// cleanup runs on every Run exit path: disable auto-driving, unsubscribe
// from the state store, unbind every node's wake callback, interrupt the
// tree (spec.md §4.7 step 5).
func (r *ReactiveRunner) cleanup() {
	r.mu.Lock()
	r.autoDriving = false
	r.mu.Unlock()

	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	for _, node := range r.tree.Iterate() {
		if wb, ok := node.(behavior.WakeBinder); ok {
			wb.BindWakeUp(nil)
		}
	}
	r.tree.Interrupt()
}

func (r *ReactiveRunner) saveCheckpoint(cp *checkpoint.Checkpointer, threadID string, step int) error {
	stateDump := r.store.Snapshot()
	treeState := make(map[string]string, len(r.tree.Iterate()))
	for _, node := range r.tree.Iterate() {
		treeState[node.Name()] = node.Status().String()
	}
	return cp.Save(threadID, step, stateDump, treeState)
}
