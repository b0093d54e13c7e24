package process

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrAlreadyWaited is returned when Wait is called on a Child that has
// already been consumed by a previous Wait.
var ErrAlreadyWaited = errors.New("child has already been waited for")

// SystemError reports the failure of an operating system primitive (fork,
// pipe, wait4) together with the errno it returned.
type SystemError struct {
	Message string
	Errno   unix.Errno
}

func newSystemError(message string, err error) *SystemError {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		errno = unix.EINVAL
	}
	return &SystemError{Message: message, Errno: errno}
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Errno.Error())
}

// Unwrap exposes the errno so callers can use errors.Is(err, unix.ECHILD).
func (e *SystemError) Unwrap() error {
	return e.Errno
}

// OriginalErrno returns the errno reported by the failed system call.
func (e *SystemError) OriginalErrno() unix.Errno {
	return e.Errno
}

// IsNoChildren reports whether err is the failure of a wait because the
// process has no children left to reap.
func IsNoChildren(err error) bool {
	var se *SystemError
	if errors.As(err, &se) {
		return se.Errno == unix.ECHILD
	}
	return errors.Is(err, unix.ECHILD)
}
