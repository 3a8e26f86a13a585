// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bacoco/BMad-Skills/version"
)

func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "show detailed build information")
	return cmd
}
