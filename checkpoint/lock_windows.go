//go:build windows

package checkpoint

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockAppend and unlockAppend mirror lock_unix.go's blocking whole-file
// exclusive lock using LockFileEx/UnlockFileEx.
func lockAppend(f *os.File) error {
	handle := windows.Handle(f.Fd())
	var overlapped windows.Overlapped
	return windows.LockFileEx(handle, windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, &overlapped)
}

func unlockAppend(f *os.File) error {
	handle := windows.Handle(f.Fd())
	var overlapped windows.Overlapped
	return windows.UnlockFileEx(handle, 0, 1, 0, &overlapped)
}
