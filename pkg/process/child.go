// Package process spawns child processes, redirects or captures their
// output, and reaps them into a decoded Status.
//
// A child is a re-execution of the current binary that runs a registered
// Body, typically one that calls Exec. Every Child must be consumed by Wait,
// possibly after WaitAny has already reaped it.
package process

import (
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Child is a process created by ForkFiles or ForkCapture.
//
// A Child must be waited for exactly once; Wait consumes it.
type Child struct {
	entry *entry

	// output is the read end of the stdout pipe, only for ForkCapture
	output *os.File

	lock   sync.Mutex
	waited bool
}

var (
	selfOnce sync.Once
	self     string
	selfErr  error
)

// executable returns the path used to re-execute the current binary.
func executable() (string, error) {
	selfOnce.Do(func() {
		self, selfErr = os.Executable()
	})
	return self, selfErr
}

// ForkFiles starts a child running inv with its stdout and stderr sent to
// the given files, which the child creates or truncates before inv runs.
//
// A failure to open the files happens in the child, and shows up only as
// an abnormal termination in the Status of the child.
func ForkFiles(inv Invocation, stdoutPath, stderrPath string) (*Child, error) {
	if stdoutPath == "" || stderrPath == "" {
		return nil, errors.New("process: stdout and stderr paths are required")
	}

	env := childEnv(map[string]string{
		envBody:   inv.name,
		envStdout: stdoutPath,
		envStderr: stderrPath,
	})
	files := []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()}

	e, err := fork(inv, env, files)
	if err != nil {
		return nil, err
	}
	return &Child{entry: e}, nil
}

// ForkCapture starts a child running inv with its stdout connected to a
// pipe, readable through Output. The stderr of the child is inherited.
func ForkCapture(inv Invocation) (*Child, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, newSystemError("Failed to create pipe", err)
	}
	// the write end belongs to the child once forked
	defer func() { _ = w.Close() }()

	env := childEnv(map[string]string{envBody: inv.name})
	files := []uintptr{os.Stdin.Fd(), w.Fd(), os.Stderr.Fd()}

	e, err := fork(inv, env, files)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	return &Child{entry: e, output: r}, nil
}

func fork(inv Invocation, env []string, files []uintptr) (*entry, error) {
	bin, err := executable()
	if err != nil {
		return nil, newSystemError("Failed to locate own executable", err)
	}

	argv := make([]string, 0, len(inv.args)+1)
	argv = append(argv, bin)
	argv = append(argv, inv.args...)

	pid, err := syscall.ForkExec(bin, argv, &syscall.ProcAttr{
		Env:   env,
		Files: files,
	})
	if err != nil {
		logger.Error("failed to fork", "body", inv.name, "error", err)
		return nil, newSystemError("Failed to fork", err)
	}

	e := &entry{
		pid:     pid,
		body:    inv.name,
		started: time.Now(),
	}
	children.insert(e)
	logger.Trace("forked child", "pid", pid, "body", inv.name, "args", inv.args)
	return e, nil
}

// PID returns the process ID of the child.
func (c *Child) PID() int {
	return c.entry.pid
}

// Started returns the time at which the child was forked.
func (c *Child) Started() time.Time {
	return c.entry.started
}

// Output returns the stdout of a child created by ForkCapture; nil for a
// child created by ForkFiles. The stream ends when the child terminates.
//
// Read it to the end before calling Wait: Wait closes it, and a child
// blocked on a full pipe never terminates.
func (c *Child) Output() io.Reader {
	if c.output == nil {
		return nil
	}
	return c.output
}

// Wait blocks until the child terminates and returns its Status.
//
// Wait consumes the child; calling it again returns ErrAlreadyWaited. If
// WaitAny already reaped the child, its recorded Status is returned.
func (c *Child) Wait() (Status, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.waited {
		return Status{}, ErrAlreadyWaited
	}
	c.waited = true

	if c.output != nil {
		defer func() { _ = c.output.Close() }()
	}

	if status, done := children.recorded(c.entry); done {
		return status, nil
	}

	status, err := wait4(c.entry.pid)
	if err != nil {
		// lost a race against WaitAny, which records the status under
		// reapLock before letting go of it
		if errors.Is(err, unix.ECHILD) {
			if status, done := c.recordedByWaitAny(); done {
				return status, nil
			}
		}
		// the pid is gone either way; keep the registry consistent
		children.forget(c.entry.pid)
		return Status{}, newSystemError("Failed to wait for child", err)
	}

	children.reaped(status.pid, status)
	logger.Trace("reaped child", "pid", status.pid, "body", c.entry.body, "status", status)
	return status, nil
}

func (c *Child) recordedByWaitAny() (Status, bool) {
	if status, done := children.recorded(c.entry); done {
		return status, true
	}
	reapLock.Lock()
	defer reapLock.Unlock()
	return children.recorded(c.entry)
}
