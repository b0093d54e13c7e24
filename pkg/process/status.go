package process

import (
	"fmt"
	"syscall"

	"github.com/freebsd/kyua-fork/pkg/resources"
	"github.com/freebsd/kyua-fork/pkg/signals"
	"golang.org/x/sys/unix"
)

// Status is the decoded outcome of a reaped child: it either exited with a
// code or was terminated by a signal, never both.
//
// A Status can only be obtained from Child.Wait or WaitAny.
type Status struct {
	pid      int
	signaled bool
	code     int
	signal   syscall.Signal
	core     bool
	usage    resources.Usage
}

func newStatus(pid int, ws unix.WaitStatus, rus *unix.Rusage) Status {
	s := Status{
		pid:   pid,
		usage: resources.FromRusage(rus),
	}
	switch {
	case ws.Signaled():
		s.signaled = true
		s.signal = ws.Signal()
		s.core = ws.CoreDump()
	default:
		// wait4 is never called with WUNTRACED or WCONTINUED, so anything
		// that is not a signal is an exit.
		s.code = ws.ExitStatus()
	}
	return s
}

// PID returns the process ID of the reaped child.
func (s Status) PID() int {
	return s.pid
}

// Exited returns true if the child terminated through a normal exit.
func (s Status) Exited() bool {
	return !s.signaled
}

// ExitStatus returns the exit code of the child.
//
// Must only be called if Exited is true.
func (s Status) ExitStatus() int {
	if !s.Exited() {
		panic("process: ExitStatus called on a signaled status")
	}
	return s.code
}

// Signaled returns true if the child was terminated by a signal.
func (s Status) Signaled() bool {
	return s.signaled
}

// TermSig returns the signal that terminated the child.
//
// Must only be called if Signaled is true.
func (s Status) TermSig() syscall.Signal {
	if !s.Signaled() {
		panic("process: TermSig called on an exited status")
	}
	return s.signal
}

// CoreDumped returns true if the signal that terminated the child produced
// a core file.
//
// Must only be called if Signaled is true.
func (s Status) CoreDumped() bool {
	if !s.Signaled() {
		panic("process: CoreDumped called on an exited status")
	}
	return s.core
}

// Usage returns the resources consumed by the child.
func (s Status) Usage() resources.Usage {
	return s.usage
}

func (s Status) String() string {
	if s.signaled {
		core := ""
		if s.core {
			core = ", core dumped"
		}
		return fmt.Sprintf("received signal %d (%s%s)", int(s.signal), signals.Name(s.signal), core)
	}
	return fmt.Sprintf("exited with code %d", s.code)
}
