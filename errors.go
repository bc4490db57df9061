package btflow

import "errors"

// Error kinds shared across BTflow components (spec §7). Components wrap
// these with fmt.Errorf("...: %w", err) so callers can use errors.Is.
var (
	// ErrSchema indicates a StateStore initialize/update failed schema
	// validation. The store is left unchanged.
	ErrSchema = errors.New("btflow: schema validation failed")

	// ErrReducer indicates a field reducer panicked or returned an error;
	// the update that triggered it is rejected atomically.
	ErrReducer = errors.New("btflow: reducer failed")

	// ErrNodeInternal indicates a node's update/update_async returned a
	// non-Status value or an unexpected error. The node is forced to
	// FAILURE with a feedback message; the scheduler continues.
	ErrNodeInternal = errors.New("btflow: node internal error")

	// ErrMaxTicksExceeded indicates a run loop stopped because max_ticks
	// was reached before the root reached a terminal status.
	ErrMaxTicksExceeded = errors.New("btflow: max ticks exceeded")

	// ErrToolNotFound indicates a requested tool has no registered
	// implementation.
	ErrToolNotFound = errors.New("btflow: tool not found")

	// ErrToolInputInvalid indicates tool argument parsing/coercion failed.
	ErrToolInputInvalid = errors.New("btflow: tool input invalid")

	// ErrToolExecution indicates a tool's Run returned an error that was
	// not retryable, or kept failing until its retries ran out.
	ErrToolExecution = errors.New("btflow: tool execution error")

	// ErrCheckpointCorrupt indicates that no line of a checkpoint file
	// could be parsed. A corrupt last line on its own is not reported: the
	// reader falls back to the previous complete line.
	ErrCheckpointCorrupt = errors.New("btflow: checkpoint corrupt")

	// ErrConcurrentModeViolation indicates step() was called during run()
	// or vice versa.
	ErrConcurrentModeViolation = errors.New("btflow: concurrent mode violation")
)
