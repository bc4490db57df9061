package checkpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joeycumines/btflow"
)

// readChunkSize is the amortized backward-scan chunk, matching
// original_source/btflow/core/persistence.py's SimpleCheckpointer (8KB).
const readChunkSize = 8192

// Checkpointer persists Checkpoints to one append-only JSONL file per
// thread_id under dir (spec.md §4.9, §6.2).
type Checkpointer struct {
	dir string
}

// NewCheckpointer returns a Checkpointer writing under dir, creating dir if
// it does not already exist.
func NewCheckpointer(dir string) (*Checkpointer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create storage dir: %w", err)
	}
	return &Checkpointer{dir: dir}, nil
}

func (c *Checkpointer) path(threadID string) string {
	return filepath.Join(c.dir, threadID+".jsonl")
}

// Save appends one Checkpoint record as a single JSON line, flushing before
// returning so the record survives a crash immediately after Save returns.
func (c *Checkpointer) Save(threadID string, step int, stateDump map[string]any, treeState map[string]string) error {
	entry := Checkpoint{
		ThreadID:  threadID,
		Step:      step,
		Timestamp: time.Now(),
		StateDump: stateDump,
		TreeState: treeState,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(c.path(threadID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("checkpoint: open %q: %w", threadID, err)
	}
	defer f.Close()

	if err := lockAppend(f); err != nil {
		return fmt.Errorf("checkpoint: lock %q: %w", threadID, err)
	}
	defer unlockAppend(f)

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("checkpoint: write %q: %w", threadID, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("checkpoint: sync %q: %w", threadID, err)
	}
	return nil
}

// LoadLatest returns the most recently saved, successfully-parsed
// Checkpoint for threadID, or (nil, nil) if no checkpoint file exists yet.
// It reads backward from EOF in fixed-size chunks rather than scanning the
// whole file forward, so cost is independent of history length (spec.md
// §4.9's amortized-O(1) rationale).
//
// If the last line fails to parse — a writer crashed mid-append, leaving a
// truncated tail — LoadLatest falls back to the previous complete line
// instead of failing outright (spec.md §4.7.1/§7's CheckpointCorrupt
// semantics; the Python original this was ported from does not implement
// this fallback, so it is a deliberate addition). If every line in the file
// is corrupt, the last error encountered is returned.
func (c *Checkpointer) LoadLatest(threadID string) (*Checkpoint, error) {
	f, err := os.Open(c.path(threadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checkpoint: open %q: %w", threadID, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: stat %q: %w", threadID, err)
	}
	if info.Size() == 0 {
		return nil, nil
	}

	var result *Checkpoint
	var lastErr error
	scanErr := iterateLinesReverse(f, info.Size(), func(line []byte) bool {
		var cp Checkpoint
		if err := json.Unmarshal(line, &cp); err != nil {
			lastErr = fmt.Errorf("%w: thread %q: %v", btflow.ErrCheckpointCorrupt, threadID, err)
			return false // keep scanning further back
		}
		result = &cp
		return true
	})
	if scanErr != nil {
		return nil, fmt.Errorf("checkpoint: scan %q: %w", threadID, scanErr)
	}
	if result != nil {
		return result, nil
	}
	return nil, lastErr
}

// iterateLinesReverse walks the readable file f backward from EOF in
// readChunkSize chunks, calling yield once per non-empty line in
// last-to-first order. yield returns true to stop early. Ported from
// SimpleCheckpointer.load_latest's seek-and-split loop.
func iterateLinesReverse(f *os.File, size int64, yield func(line []byte) bool) error {
	position := size
	var buffer []byte

	for position > 0 {
		readSize := int64(readChunkSize)
		if readSize > position {
			readSize = position
		}
		position -= readSize

		chunk := make([]byte, readSize)
		if _, err := f.ReadAt(chunk, position); err != nil && err != io.EOF {
			return err
		}
		buffer = append(chunk, buffer...)

		lines := bytes.Split(buffer, []byte("\n"))
		// lines[0] may still be a partial prefix whose remainder lives in
		// an earlier, unread chunk; everything after it is bounded by two
		// newlines (or EOF) within buffer and so is complete.
		for i := len(lines) - 1; i >= 1; i-- {
			stripped := bytes.TrimSpace(lines[i])
			if len(stripped) == 0 {
				continue
			}
			if yield(stripped) {
				return nil
			}
		}
		buffer = lines[0]
	}

	// Whatever remains is the start of the file (no further data precedes
	// it), so it is complete even though it was never newline-terminated.
	if stripped := bytes.TrimSpace(buffer); len(stripped) > 0 {
		yield(stripped)
	}
	return nil
}
