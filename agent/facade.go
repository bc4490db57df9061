// Package agent implements AgentFacade, BTflow's unified entry point over a
// shared ReactiveRunner and StateStore (spec.md §4.8), ported from
// original_source/btflow/core/agent.py's BTAgent.
package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/joeycumines/btflow"
	"github.com/joeycumines/btflow/checkpoint"
	"github.com/joeycumines/btflow/runner"
)

// mode mirrors BTAgent's self._mode: {idle, step, run}.
type mode int

const (
	modeIdle mode = iota
	modeStep
	modeRun
)

// AgentFacade serializes two driving modes, step and run, over one
// ReactiveRunner+StateStore pair: step() is a forced synchronous tick for
// per-frame control (RL, simulation); run() is the event-driven loop for
// task-style agents (chat, planning). A state field enforces mutual
// exclusion between the two (spec.md §4.8).
type AgentFacade struct {
	runner *runner.ReactiveRunner

	mu   sync.Mutex
	mode mode
}

// NewAgentFacade wraps an already-constructed ReactiveRunner.
func NewAgentFacade(r *runner.ReactiveRunner) *AgentFacade {
	return &AgentFacade{runner: r}
}

// Runner returns the underlying ReactiveRunner, for callers that need
// direct access (e.g. to register additional metrics).
func (a *AgentFacade) Runner() *runner.ReactiveRunner { return a.runner }

func (a *AgentFacade) enter(m mode, forbidden mode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == forbidden {
		return fmt.Errorf("agent: %w", btflow.ErrConcurrentModeViolation)
	}
	a.mode = m
	return nil
}

func (a *AgentFacade) leave() {
	a.mu.Lock()
	a.mode = modeIdle
	a.mu.Unlock()
}

// Step forces one synchronous tick and returns the resulting action
// snapshot (spec.md §4.8 step()): reset_actions, optional observation
// update, tick_once, return get_actions. Disables auto-driving first so a
// concurrent Run loop (if any were ever left dangling) can't race a
// coalesced wake signal against this forced tick.
//
// yieldToAsync, if true, cooperatively yields to the Go scheduler after
// ticking (runtime.Gosched), giving any goroutine-backed AsyncLeaf a chance
// to make background progress before Step returns — the Go analogue of the
// Python original's optional `await asyncio.sleep(0)`.
func (a *AgentFacade) Step(ctx context.Context, obs map[string]any, yieldToAsync bool) (map[string]any, error) {
	if err := a.enter(modeStep, modeRun); err != nil {
		return nil, err
	}
	defer a.leave()

	a.runner.DisableAutoDriving()

	store := a.runner.Store()
	store.ResetActions()

	if len(obs) > 0 {
		if err := store.Update(obs); err != nil {
			return nil, fmt.Errorf("agent: step: update observation: %w", err)
		}
	}

	a.runner.TickOnce()

	if yieldToAsync {
		yieldToScheduler()
	}

	return store.GetActions(), nil
}

// RunOptions configures AgentFacade.Run (spec.md §4.8 run()).
type RunOptions struct {
	// Input, if non-empty, is applied via StateStore.Update after any
	// resets; this also kicks the event loop via the store's subscriber.
	Input map[string]any
	// ResetTree interrupts the tree before running, forcing a fresh
	// decision from the root instead of resuming from composites'
	// current_child positions.
	ResetTree bool
	// ResetData re-initializes the store to its schema defaults before
	// running, discarding prior state.
	ResetData bool
	// MaxTicks, Checkpointer, CheckpointInterval, ThreadID are forwarded
	// to runner.RunOptions verbatim.
	MaxTicks           int
	Checkpointer       *checkpoint.Checkpointer
	CheckpointInterval int
	ThreadID           string
	MaxFPS             float64
}

// Run delegates to the ReactiveRunner's event-driven loop (spec.md §4.8
// run()): optional tree interrupt, optional data reset, drain any stale
// coalesced tick signal, optional input injection, then Runner.Run.
func (a *AgentFacade) Run(ctx context.Context, opts RunOptions) error {
	if err := a.enter(modeRun, modeStep); err != nil {
		return err
	}
	defer a.leave()

	if opts.ResetTree {
		a.runner.Tree().Interrupt()
	}

	if opts.ResetData {
		if err := a.runner.Store().Initialize(nil); err != nil {
			return fmt.Errorf("agent: run: reset data: %w", err)
		}
	}

	// Drain before injecting input, so a signal left over from a prior
	// run doesn't steal the first tick ahead of the fresh input (spec.md
	// §4.8 run step 3-4 ordering).
	a.runner.ClearSignal()

	if len(opts.Input) > 0 {
		if err := a.runner.Store().Update(opts.Input); err != nil {
			return fmt.Errorf("agent: run: update input: %w", err)
		}
	}

	return a.runner.Run(ctx, runner.RunOptions{
		MaxTicks:           opts.MaxTicks,
		Checkpointer:       opts.Checkpointer,
		CheckpointInterval: opts.CheckpointInterval,
		ThreadID:           opts.ThreadID,
		MaxFPS:             opts.MaxFPS,
	})
}

// Reset ends the current episode (spec.md §4.8 reset()): interrupts the
// tree (every node → INVALID), optionally re-initializes the store,
// drains any pending signal, and disables auto-driving. Unlike Step and
// Run, Reset does not itself serialize against a concurrent mode — callers
// are expected to call it between episodes, not from within a Step/Run
// call.
func (a *AgentFacade) Reset(resetData bool) error {
	a.runner.Tree().Interrupt()
	if resetData {
		if err := a.runner.Store().Initialize(nil); err != nil {
			return fmt.Errorf("agent: reset: %w", err)
		}
	}
	a.runner.ClearSignal()
	a.runner.DisableAutoDriving()
	a.leave()
	return nil
}
