package task

import (
	"bytes"
	"os"
	"syscall"
	"time"

	"github.com/freebsd/kyua-fork/pkg/process"
)

// Outcome classifies how a test program terminated.
type Outcome string

const (
	Passed  Outcome = "passed"
	Failed  Outcome = "failed"
	Broken  Outcome = "broken"
	Crashed Outcome = "crashed"
)

// execFailure is the diagnostic process.Exec leaves on stderr.
var execFailure = []byte("Failed to execute")

// Result is the outcome of a test program after it has been reaped.
type Result struct {
	Program   Program
	Status    process.Status
	Started   time.Time
	Completed time.Time
	Stdout    string
	Stderr    string
}

// Elapsed returns the wall time between start and reap.
func (r *Result) Elapsed() time.Duration {
	return r.Completed.Sub(r.Started)
}

// Outcome tells "ran and reported failure" apart from "could not run" and
// "crashed", which the status alone does not.
func (r *Result) Outcome() Outcome {
	switch {
	case r.Status.Exited() && r.Status.ExitStatus() == 0:
		return Passed
	case r.Status.Exited():
		return Failed
	case r.Status.TermSig() == syscall.SIGABRT && r.execFailed():
		return Broken
	default:
		return Crashed
	}
}

func (r *Result) execFailed() bool {
	b, err := os.ReadFile(r.Stderr)
	if err != nil {
		return false
	}
	return bytes.Contains(b, execFailure)
}
