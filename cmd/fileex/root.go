// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jongio/fileex/cliout"
	"github.com/jongio/fileex/config"
	"github.com/jongio/fileex/logutil"
	"github.com/jongio/fileex/version"
)

// app holds the state shared by all commands.
type app struct {
	cfg  *config.Config
	info *version.Info

	configPath string
	output     string
	color      string
	debug      bool
	logLevel   string
	readLimit  string
}

func newRootCmd() *cobra.Command {
	a := &app{info: version.New("fileex")}

	root := &cobra.Command{
		Use:   "fileex",
		Short: "Whole-file read, write and search utility",
		Long: `fileex reads, writes and searches whole files.

Reads are bounded by a read limit (32 MiB unless configured) and never return
a partial file. Writes never create missing parent directories. Paths are used
as given, relative to the working directory.

Exit codes: 0 success, 1 I/O or usage error, 2 not found, 3 permission denied,
4 file too large, 5 invalid UTF-8.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/fileex/config.yaml)")
	flags.StringVarP(&a.output, "output", "o", "default", "output format (default, json)")
	flags.StringVar(&a.color, "color", cliout.ColorAuto, "color output (auto, always, never)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.readLimit, "read-limit", "", "largest file a read accepts, e.g. 64MiB")

	root.AddCommand(
		a.newExistsCmd(),
		a.newStatCmd(),
		a.newReadCmd(),
		a.newWriteCmd(),
		a.newSearchCmd(),
		a.newMCPCmd(),
		version.NewCommand(a.info),
	)
	return root
}

// setup resolves configuration: defaults, config file, environment, then flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := cliout.SetFormat(a.output); err != nil {
		return err
	}
	if err := cliout.SetColor(a.color); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = a.debug
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("read-limit") {
		size, err := config.ParseByteSize(a.readLimit)
		if err != nil {
			return err
		}
		cfg.ReadLimit = size
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logutil.SetupLogger(os.Stderr, cfg.LogFormat)
	logutil.SetLevel(cfg.Level())
	logutil.Debug("configuration resolved", "read_limit", cfg.ReadLimit.String(), "command", cmd.Name())
	a.cfg = cfg
	return nil
}
