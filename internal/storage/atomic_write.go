package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// testHookCrashBeforeRename, when non-nil, is invoked after the temp file
// is written and synced but before the rename that publishes it. A test
// can set it to simulate a crash mid-write and check that the original
// file survives untouched; no test in this module sets it.
var testHookCrashBeforeRename func()

// RenameError wraps a failure to publish a written temp file via rename,
// retaining the temp path so callers can inspect or clean up the orphan.
type RenameError struct {
	Err      error
	TempPath string
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s: %v", e.TempPath, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// AtomicWriteFile writes data to path by first writing to a temp file in
// the same directory, syncing it, then renaming it over path. On POSIX and
// Windows, rename within the same filesystem is atomic: readers either see
// the old complete file or the new complete file, never a partial write.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tempPath := tmp.Name()

	removeTemp := true
	defer func() {
		if removeTemp {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("storage: chmod temp file: %w", err)
	}

	if testHookCrashBeforeRename != nil {
		testHookCrashBeforeRename()
	}

	if err := os.Rename(tempPath, path); err != nil {
		return &RenameError{Err: err, TempPath: tempPath}
	}
	removeTemp = false
	return nil
}
