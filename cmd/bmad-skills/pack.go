// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bacoco/BMad-Skills/bundle"
	"github.com/bacoco/BMad-Skills/config"
)

func (a *app) newPackCmd() *cobra.Command {
	var (
		out string
		tag string
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack the bundle into a reproducible archive or OCI layout",
		Long: `Pack a bundle directory into a reproducible .tar.gz archive, a local OCI
image layout, or both. Timestamps come from SOURCE_DATE_EPOCH when set, so
identical trees produce identical digests.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" && a.cfg.OCILayout == "" {
				return usageError(cmd, errors.New("one of --out or --oci-layout is required"))
			}

			cwd, err := a.cwd()
			if err != nil {
				return err
			}
			src := filepath.Join(cwd, config.SkillsDir)
			if a.cfg.Source != "" {
				src = absPath(cwd, a.cfg.Source)
			}

			opts := bundle.DefaultPackOptions(a.env)
			archive, err := bundle.PackDir(a.fs, src, opts)
			if err != nil {
				return err
			}
			a.printer.Success("📦 Packed %d files from %s (version %s, %d skills)",
				len(archive.Files), src, archive.Version, len(archive.Skills))

			if out != "" {
				path := absPath(cwd, out)
				if err := afero.WriteFile(a.fs, path, archive.Data, 0o644); err != nil {
					return fmt.Errorf("writing archive: %w", err)
				}
				a.printer.Info("   Archive: %s", path)
				a.printer.Info("   Digest:  %s", archive.Digest)
			}

			if a.cfg.OCILayout != "" {
				layout := absPath(cwd, a.cfg.OCILayout)
				store, err := bundle.NewStore(layout)
				if err != nil {
					return err
				}
				if tag == "" {
					tag = archive.Version
				}
				res, err := store.Push(cmd.Context(), archive, bundle.PushOptions{Tag: tag, Created: opts.Epoch})
				if err != nil {
					return err
				}
				a.printer.Info("   OCI layout: %s", layout)
				a.printer.Info("   Tag:        %s", res.Tag)
				a.printer.Info("   Manifest:   %s", res.ManifestDigest)
			}
			return nil
		},
	}

	cmd.Flags().String(config.KeySource, "", "bundle directory to pack (default: ./.claude/skills)")
	cmd.Flags().String(config.KeyOCILayout, "", "store the bundle in this OCI image layout")
	cmd.Flags().StringVar(&out, "out", "", "write the .tar.gz archive to this file")
	cmd.Flags().StringVar(&tag, "tag", "", "tag for the OCI layout (default: the manifest version)")
	return cmd
}

func absPath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
