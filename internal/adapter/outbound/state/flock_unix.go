//go:build !windows

package state

import "syscall"

// flockLock takes an exclusive advisory lock on the open descriptor,
// blocking until any current holder releases it.
func flockLock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX)
}

// flockUnlock drops the advisory lock taken by flockLock.
func flockUnlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
