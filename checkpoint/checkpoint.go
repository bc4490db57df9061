// Package checkpoint implements BTflow's durable run-progress records: a
// file-per-thread-id, append-only newline-delimited-JSON log and an
// O(1)-amortized reader that scans backward from EOF for the latest
// complete record (spec.md §4.9, §6.2), ported from
// original_source/btflow/core/persistence.py's SimpleCheckpointer.
package checkpoint

import (
	"time"
)

// Checkpoint is one saved snapshot of a run: the state store's data and
// every named node's status at the moment of the save (spec.md §3.5).
type Checkpoint struct {
	ThreadID  string            `json:"thread_id"`
	Step      int               `json:"step"`
	Timestamp time.Time         `json:"timestamp"`
	StateDump map[string]any    `json:"state_dump"`
	TreeState map[string]string `json:"tree_state"`
}
