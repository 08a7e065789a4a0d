//go:build windows

package state

import "golang.org/x/sys/windows"

// flockLock locks the first byte of the open file via LockFileEx. The call
// blocks until the lock is granted, so callers see the same semantics as
// the Unix flock shim.
func flockLock(fd uintptr) error {
	var ol windows.Overlapped
	return windows.LockFileEx(windows.Handle(fd), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, &ol)
}

// flockUnlock undoes the byte-range lock taken by flockLock.
func flockUnlock(fd uintptr) error {
	var ol windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(fd), 0, 1, 0, &ol)
}
