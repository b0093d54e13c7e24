package process

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"golang.org/x/sys/unix"
)

// Exec replaces the current process image with program. argv[0] of the new
// image is program itself, followed by args verbatim. The environment is
// inherited and no shell or PATH lookup is involved.
//
// Exec never returns. If the image cannot be replaced, a diagnostic is
// written to stderr and the process aborts with SIGABRT, so that the parent
// can tell "could not start" apart from "ran and failed". The
// "Failed to execute" line is followed on stderr by a dump of the
// goroutines of the aborting process.
//
// Exec is meant to run in a Body, never in a process whose state matters.
func Exec(program string, args []string) {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, program)
	argv = append(argv, args...)

	err := unix.Exec(program, argv, os.Environ())
	fmt.Fprintf(os.Stderr, "Failed to execute %s: %v\n", program, err)
	abort()
}

// raise sends sig to pid; replaced in tests.
var raise = unix.Kill

// abortGrace bounds how long abort waits for SIGABRT to be delivered.
const abortGrace = 10 * time.Second

// abort terminates the current process with SIGABRT.
//
// The go runtime owns the SIGABRT handler; with traceback level "crash" it
// dumps the goroutines and then re-raises the signal with the default
// disposition, which is what kills the process. If the signal cannot be
// sent, or never arrives, the process exits with code 2 instead.
func abort() {
	debug.SetTraceback("crash")
	if err := raise(unix.Getpid(), unix.SIGABRT); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to raise SIGABRT: %v\n", err)
		os.Exit(2)
	}
	time.Sleep(abortGrace)
	os.Exit(2)
}
