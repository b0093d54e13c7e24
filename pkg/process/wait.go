package process

import (
	"sync"

	"golang.org/x/sys/unix"
)

// reapLock is held by WaitAny from its wait4 until the status is recorded,
// so a Child.Wait that finds its pid gone can wait for the record.
var reapLock sync.Mutex

// WaitAny blocks until any child of the current process terminates and
// returns its Status. The child need not have been created by this
// package; if it was, its Child will get the same Status from Wait.
//
// The order in which several outstanding children are returned is the
// order in which the kernel reaps them. With no children left, WaitAny
// fails with a *SystemError carrying ECHILD; see IsNoChildren.
//
// Concurrent calls to WaitAny are serialized.
func WaitAny() (Status, error) {
	reapLock.Lock()
	defer reapLock.Unlock()

	status, err := wait4(-1)
	if err != nil {
		return Status{}, newSystemError("Failed to wait for any child process", err)
	}

	tracked := children.reaped(status.pid, status)
	logger.Trace("reaped any child", "pid", status.pid, "tracked", tracked, "status", status)
	return status, nil
}

// wait4 waits for pid (or any child if -1), retrying on EINTR.
func wait4(pid int) (Status, error) {
	var (
		ws  unix.WaitStatus
		rus unix.Rusage
	)
	for {
		reaped, err := unix.Wait4(pid, &ws, 0, &rus)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			return Status{}, err
		default:
			return newStatus(reaped, ws, &rus), nil
		}
	}
}
