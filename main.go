package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/freebsd/kyua-fork/pkg/process"
)

func main() {
	// must run first: a child of this binary never gets past it
	process.Init()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
