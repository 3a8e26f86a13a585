// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bacoco/BMad-Skills/config"
	"github.com/bacoco/BMad-Skills/console"
	"github.com/bacoco/BMad-Skills/env"
	"github.com/bacoco/BMad-Skills/exitcode"
	"github.com/bacoco/BMad-Skills/installer"
	"github.com/bacoco/BMad-Skills/logging"
)

// app carries the process dependencies shared by every command.
type app struct {
	fs         afero.Fs
	env        env.Reader
	stdout     io.Writer
	stderr     io.Writer
	getwd      func() (string, error)
	executable func() (string, error)

	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	printer    *console.Printer
}

func newApp(fs afero.Fs, r env.Reader, stdout, stderr io.Writer) *app {
	return &app{
		fs:         fs,
		env:        r,
		stdout:     stdout,
		stderr:     stderr,
		getwd:      os.Getwd,
		executable: os.Executable,
		logger:     logging.NewNop(),
		printer:    console.New(stdout, console.WithColor(false)),
	}
}

// run executes the command line and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.OK
	}

	code := exitcode.Code(err)
	if code != exitcode.Lint {
		a.printer.Error("❌ Error: %s", err)
		a.printer.Plain("")
		a.printer.Info("For help, run: bmad-skills --help")
	}
	a.logger.Debug("command failed", "error", err, "code", code)
	return code
}

// setup loads configuration once flags are parsed and builds the logger
// and printer for the executing command.
func (a *app) setup(cmd *cobra.Command) error {
	cwd, err := a.getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	v, err := config.New(a.fs, a.configFile, cwd)
	if err != nil {
		return exitcode.WithCode(err, exitcode.Usage)
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	cfg, err := config.Load(v, a.env)
	if err != nil {
		return exitcode.WithCode(err, exitcode.Usage)
	}
	a.cfg = cfg

	a.logger = logging.New(append(cfg.LogOptions(), logging.WithOutput(a.stderr))...)
	a.printer = console.New(a.stdout, console.WithColor(!cfg.NoColor && console.IsTerminal(a.stdout)))
	if used := v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", "path", used)
	}
	return nil
}

func (a *app) cwd() (string, error) {
	cwd, err := a.getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return cwd, nil
}

func (a *app) newInstaller(reporters ...installer.Reporter) *installer.Installer {
	return installer.New(
		installer.WithFs(a.fs),
		installer.WithLogger(a.logger),
		installer.WithReporter(installer.MultiReporter(reporters)),
	)
}

// installExitCode attaches the exit code matching an install failure.
func installExitCode(err error) error {
	var integrity *installer.IntegrityError
	switch {
	case errors.Is(err, installer.ErrManualIntervention):
		return exitcode.WithCode(err, exitcode.ManualIntervention)
	case errors.As(err, &integrity):
		return exitcode.WithCode(err, exitcode.Integrity)
	default:
		return exitcode.WithCode(err, exitcode.Failure)
	}
}

func usageError(cmd *cobra.Command, err error) error {
	return exitcode.WithCode(fmt.Errorf("%w\nRun '%s --help' for usage", err, cmd.CommandPath()), exitcode.Usage)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(cmd, fmt.Errorf("unexpected argument %q", args[0]))
	}
	return nil
}
