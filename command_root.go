package main

import (
	"errors"

	"github.com/freebsd/kyua-fork/pkg/config"
	"github.com/freebsd/kyua-fork/pkg/process"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// errFailed is returned when at least one program did not pass; the
// results have already been printed.
var errFailed = errors.New("some programs did not pass")

// app is the state shared by the subcommands once flags are parsed.
type app struct {
	configPath string
	config     config.Config
	logger     hclog.Logger
}

func newRootCmd() *cobra.Command {
	a := new(app)

	root := &cobra.Command{
		Use:           "kyua-fork",
		Short:         "Run test programs as child processes and report how they terminated",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML configuration file")

	root.AddCommand(newExecCmd(a))
	root.AddCommand(newRunCmd(a))

	return root
}

func (a *app) setup() error {
	a.config = config.Default()
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.config = cfg
	}

	a.logger = a.config.Logger("kyua-fork")
	process.SetLogger(a.logger)
	a.logger.Debug("configured", "work_dir", a.config.WorkDir, "log_level", a.config.LogLevel)
	return nil
}
