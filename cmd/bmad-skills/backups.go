// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
)

func (a *app) newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List backups of the installation target",
		Long: `List the backup directories kept next to the installation target, newest
first. Backups are never deleted automatically.`,
		Args: noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cwd, err := a.cwd()
			if err != nil {
				return err
			}
			target := a.cfg.Target(a.env, cwd)

			backups, err := a.newInstaller().Backups(target)
			if err != nil {
				return err
			}
			a.printer.Backups(target, backups)
			return nil
		},
	}
	addTargetFlags(cmd)
	return cmd
}
