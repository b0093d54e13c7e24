package task

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/freebsd/kyua-fork/pkg/process"
	"oss.indeed.com/go/libtime"
)

// Program is a test program to run, with its arguments (not including
// argv[0]).
type Program struct {
	Path string
	Args []string
}

func (p Program) String() string {
	return fmt.Sprintf("(%s, %v)", p.Path, p.Args)
}

// Handle tracks one running test program.
type Handle struct {
	lock sync.RWMutex

	program Program
	child   *process.Child
	clock   libtime.Clock
	stdout  string
	stderr  string

	started   time.Time
	completed time.Time
	result    *Result
}

// Start launches p with its stdout and stderr captured into files named
// stdout and stderr under dir.
func Start(p Program, dir string) (*Handle, error) {
	return StartFiles(p, filepath.Join(dir, "stdout"), filepath.Join(dir, "stderr"))
}

// StartFiles launches p with its stdout and stderr captured into the given
// files, which are created or truncated.
func StartFiles(p Program, stdout, stderr string) (*Handle, error) {
	return start(libtime.SystemClock(), p, stdout, stderr)
}

func start(clock libtime.Clock, p Program, stdout, stderr string) (*Handle, error) {
	if p.Path == "" {
		return nil, fmt.Errorf("program path is required")
	}

	started := clock.Now()
	child, err := process.ForkFiles(process.Command(p.Path, p.Args), stdout, stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to start program %s: %w", p.Path, err)
	}

	return &Handle{
		program: p,
		child:   child,
		clock:   clock,
		stdout:  stdout,
		stderr:  stderr,
		started: started,
	}, nil
}

// PID returns the process ID of the running program.
func (h *Handle) PID() int {
	return h.child.PID()
}

// Program returns the program being run.
func (h *Handle) Program() Program {
	return h.program
}

// IsRunning returns true until the program has been reaped.
func (h *Handle) IsRunning() bool {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.result == nil
}

// Block waits for the program to terminate and returns its Result.
func (h *Handle) Block() (*Result, error) {
	status, err := h.child.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to wait for program %s: %w", h.program.Path, err)
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	h.completed = h.clock.Now()
	h.result = &Result{
		Program:   h.program,
		Status:    status,
		Started:   h.started,
		Completed: h.completed,
		Stdout:    h.stdout,
		Stderr:    h.stderr,
	}
	return h.result, nil
}

// Reap waits for every handle to terminate, in whatever order the kernel
// reaps them, calling fn with each result as it arrives.
//
// Reap relies on WaitAny, so the calling process must not have other
// children running that somebody else intends to wait for.
func Reap(handles []*Handle, fn func(*Result)) error {
	pending := make(map[int]*Handle, len(handles))
	for _, h := range handles {
		pending[h.PID()] = h
	}

	for len(pending) > 0 {
		status, err := process.WaitAny()
		if err != nil {
			return fmt.Errorf("failed to reap programs: %w", err)
		}
		h, exists := pending[status.PID()]
		if !exists {
			continue
		}
		delete(pending, status.PID())

		// the status was recorded by WaitAny; this consumes the child
		result, err := h.Block()
		if err != nil {
			return err
		}
		fn(result)
	}
	return nil
}
