package process

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/shoenig/test/must"
	"golang.org/x/sys/unix"
)

func TestSystemError(t *testing.T) {
	err := newSystemError("Failed to fork", unix.EAGAIN)
	must.Eq(t, unix.EAGAIN, err.OriginalErrno())
	must.Eq(t, "Failed to fork: "+unix.EAGAIN.Error(), err.Error())
	must.ErrorIs(t, err, unix.EAGAIN)
	must.False(t, IsNoChildren(err))
}

func TestSystemError_wrapped(t *testing.T) {
	cause := &os.SyscallError{Syscall: "pipe2", Err: unix.EMFILE}
	err := newSystemError("Failed to create pipe", cause)
	must.Eq(t, unix.EMFILE, err.OriginalErrno())
}

func TestIsNoChildren(t *testing.T) {
	must.True(t, IsNoChildren(newSystemError("Failed to wait", unix.ECHILD)))
	must.True(t, IsNoChildren(fmt.Errorf("outer: %w", newSystemError("Failed to wait", unix.ECHILD))))
	must.True(t, IsNoChildren(unix.ECHILD))
	must.False(t, IsNoChildren(errors.New("Failed to wait")))
	must.False(t, IsNoChildren(nil))
}
