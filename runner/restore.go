package runner

import (
	"fmt"

	"github.com/joeycumines/btflow/behavior"
	"github.com/joeycumines/btflow/checkpoint"
)

// restore applies a loaded Checkpoint to the live tree and state store
// (spec.md §4.7.1): the store is re-initialized from state_dump, then
// every named node's saved status is applied. A composite node (one that
// implements behavior.Restorable) restored to RUNNING has its scan-resume
// bookkeeping repaired via RestoreRunning; any other node restored to
// RUNNING is downgraded to INVALID so it re-runs from scratch on resume,
// since leaf work may have had non-idempotent side effects.
//
// This happens in two passes over the tree, not one: RestoreRunning scans
// a composite's children for the first one that hasn't yet met the
// composite's success criterion, so every child's own status must already
// be restored before any composite repairs its scan-resume position —
// tree.Iterate()'s pre-order (parent before children) makes a single pass
// unsafe.
func (r *ReactiveRunner) restore(cp *checkpoint.Checkpoint) error {
	if err := r.store.Initialize(cp.StateDump); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}

	nodes := r.tree.Iterate()

	for _, node := range nodes {
		saved, ok := cp.TreeState[node.Name()]
		if !ok {
			continue
		}

		status := behavior.ParseStatus(saved)
		if status != behavior.Running {
			node.SetStatus(status)
			continue
		}

		if _, ok := node.(behavior.Restorable); ok {
			node.SetStatus(behavior.Running)
		} else {
			node.SetStatus(behavior.Invalid)
		}
	}

	for _, node := range nodes {
		if cp.TreeState[node.Name()] != "RUNNING" {
			continue
		}
		if restorable, ok := node.(behavior.Restorable); ok {
			restorable.RestoreRunning()
		}
	}

	return nil
}
