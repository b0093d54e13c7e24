package main

import (
	"fmt"
	"io"
	"time"

	"github.com/freebsd/kyua-fork/pkg/task"
)

func printResult(w io.Writer, r *task.Result) {
	fmt.Fprintf(w, "%s: %s (%s) [%s, %s]\n",
		r.Program.Path, r.Outcome(), r.Status, r.Elapsed().Round(time.Millisecond), r.Status.Usage())
	if r.Outcome() != task.Passed {
		fmt.Fprintf(w, "    stdout: %s\n    stderr: %s\n", r.Stdout, r.Stderr)
	}
}
