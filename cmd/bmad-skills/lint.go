// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/bacoco/BMad-Skills/exitcode"
	"github.com/bacoco/BMad-Skills/lint"
)

func (a *app) newLintCmd() *cobra.Command {
	var (
		root           string
		bundleDir      string
		packageVersion string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the bundle repository before publication",
		Long: `Check that the bundle repository is ready to publish: required files
exist, every skill has the expected structure, SKILL.md frontmatter agrees
with MANIFEST.json, and templates referenced by skill scripts exist.

Extra CEL rules can be listed under lint-rules in the config file.`,
		Args: noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if root == "" {
				cwd, err := a.cwd()
				if err != nil {
					return err
				}
				root = cwd
			}

			report, err := lint.Run(lint.Options{
				Root:           root,
				BundleDir:      bundleDir,
				PackageVersion: packageVersion,
				Rules:          a.cfg.LintRules,
				Fs:             a.fs,
				Logger:         a.logger,
			})
			if err != nil {
				return err
			}

			a.printer.LintReport(report)
			return exitcode.WithCode(report.Err(), exitcode.Lint)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "repository root (default: current directory)")
	cmd.Flags().StringVar(&bundleDir, "bundle-dir", lint.DefaultBundleDir, "bundle directory relative to --root")
	cmd.Flags().StringVar(&packageVersion, "package-version", "", "version every skill must carry (default: the manifest version)")
	return cmd
}
