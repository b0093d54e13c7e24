package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/freebsd/kyua-fork/pkg/task"
	"github.com/spf13/cobra"
)

func newExecCmd(a *app) *cobra.Command {
	var dir, stdout, stderr string

	cmd := &cobra.Command{
		Use:   "exec [--dir d] [--stdout p] [--stderr p] -- <program> [args...]",
		Short: "Run a single test program and print its status",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("must provide a program name; use -- to separate flags from the program arguments")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" && (stdout == "" || stderr == "") {
				tmp, err := os.MkdirTemp(a.config.WorkDir, "kyua-fork-*")
				if err != nil {
					return err
				}
				dir = tmp
			}

			if stdout == "" {
				stdout = filepath.Join(dir, "stdout")
			}
			if stderr == "" {
				stderr = filepath.Join(dir, "stderr")
			}

			program := task.Program{Path: args[0], Args: args[1:]}
			a.logger.Debug("starting program", "program", program, "stdout", stdout, "stderr", stderr)

			h, err := task.StartFiles(program, stdout, stderr)
			if err != nil {
				return err
			}
			result, err := h.Block()
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			if result.Outcome() != task.Passed {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory receiving the stdout and stderr files")
	cmd.Flags().StringVar(&stdout, "stdout", "", "file receiving the stdout of the program (default <dir>/stdout)")
	cmd.Flags().StringVar(&stderr, "stderr", "", "file receiving the stderr of the program (default <dir>/stderr)")
	return cmd
}
