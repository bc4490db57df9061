//go:build !windows

package checkpoint

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockAppend takes an exclusive, blocking lock on f for the duration of one
// append, so two Checkpointer instances (in-process or cross-process)
// sharing a thread_id file never interleave partial JSON lines. Locks the
// checkpoint data file itself via unix.Flock rather than a side lock file,
// and blocks instead of failing fast (a brief per-append lock is expected to
// be held only momentarily).
func lockAppend(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func unlockAppend(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
