package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/freebsd/kyua-fork/pkg/task"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <program>...",
		Short: "Run several test programs at once and report each as it terminates",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("must provide at least one program name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.MkdirTemp(a.config.WorkDir, "kyua-fork-*")
			if err != nil {
				return err
			}

			handles := make([]*task.Handle, 0, len(args))
			for i, path := range args {
				dir := filepath.Join(root, fmt.Sprintf("%d", i))
				if err = os.Mkdir(dir, 0o755); err != nil {
					return err
				}
				h, err := task.Start(task.Program{Path: path}, dir)
				if err != nil {
					// the ones already started still have to be reaped
					if rerr := task.Reap(handles, func(*task.Result) {}); rerr != nil {
						a.logger.Warn("failed to reap started programs", "error", rerr)
					}
					return err
				}
				a.logger.Debug("started program", "program", path, "pid", h.PID(), "dir", dir)
				handles = append(handles, h)
			}

			ok := true
			err = task.Reap(handles, func(r *task.Result) {
				printResult(cmd.OutOrStdout(), r)
				ok = ok && r.Outcome() == task.Passed
			})
			switch {
			case err != nil:
				return err
			case !ok:
				return errFailed
			default:
				return nil
			}
		},
	}
	return cmd
}
