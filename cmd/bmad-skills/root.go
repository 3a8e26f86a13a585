// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/bacoco/BMad-Skills/config"
	"github.com/bacoco/BMad-Skills/installer"
	"github.com/bacoco/BMad-Skills/version"
)

const rootLong = `BMAD Skills - Complete Workflow Ecosystem

Installs the skills bundle into a Claude skills directory. The bundle is
staged next to the target, validated, and renamed into place; an existing
installation is moved to <target>.backup.<timestamp> first and restored
automatically if anything fails.

Examples:
  bmad-skills                          Install to ./.claude/skills
  bmad-skills --global                 Install to ~/.claude/skills
  bmad-skills --path PATH              Install to a custom directory
  bmad-skills --archive skills.tar.gz  Install from a packed bundle

Environment:
  DEBUG=1, BMAD_DEBUG=1                Enable debug logging
  NO_COLOR                             Disable colored output
  BMAD_<FLAG>                          Set any flag, e.g. BMAD_LOG_FORMAT=json

After installation skills are auto-activated in Claude Code conversations.`

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bmad-skills",
		Short:         "Install the BMAD skills bundle",
		Long:          rootLong,
		Version:       version.Short(),
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.install(cmd)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(usageError)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is ./"+config.FileName+".yaml)")
	pf.Bool(config.KeyDebug, false, "enable debug logging")
	pf.String(config.KeyLogFormat, "text", "log format: text or json")
	pf.Bool(config.KeyNoColor, false, "disable colored output")
	pf.Bool(config.KeyTestMode, false, "install even from inside the bundle repository")
	_ = pf.MarkHidden(config.KeyTestMode)

	addTargetFlags(cmd)
	f := cmd.Flags()
	f.String(config.KeySource, "", "bundle directory to install (default: the bundle shipped with the binary)")
	f.String(config.KeyArchive, "", "install from a .tar.gz bundle archive")
	f.String(config.KeyOCILayout, "", "install from a local OCI image layout")
	f.String(config.KeyRef, config.DefaultRef, "tag or digest to install from --oci-layout")

	cmd.AddCommand(
		a.newLintCmd(),
		a.newPackCmd(),
		a.newBackupsCmd(),
		newVersionCmd(),
	)
	return cmd
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP(config.KeyGlobal, "g", false, "install to ~/.claude/skills")
	cmd.Flags().String(config.KeyPath, "", "install to a custom directory")
}

func (a *app) install(cmd *cobra.Command) error {
	cwd, err := a.cwd()
	if err != nil {
		return err
	}

	if !a.cfg.TestMode && config.InBundleRepo(a.fs, cwd) {
		a.printer.Warn("⚠️  You are already in the BMAD Skills repository!")
		a.printer.Warn("   No need to install. Use this repo directly.")
		return nil
	}

	target := a.cfg.Target(a.env, cwd)
	exe, err := a.executable()
	if err != nil {
		return err
	}
	resolved := a.cfg.ResolveSource(cwd, exe)
	a.logger.Debug("resolved install", "target", target, "source", resolved.String())

	src, err := resolved.Open(a.fs)
	if err != nil {
		return err
	}

	logReporter := installer.NewLogReporter(a.logger)
	if _, err := a.newInstaller(a.printer, logReporter).InstallFrom(cmd.Context(), src, target); err != nil {
		return installExitCode(err)
	}
	return nil
}
