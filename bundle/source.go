// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/bacoco/BMad-Skills/installer"
)

var (
	_ installer.Source = (*ArchiveSource)(nil)
	_ installer.Source = (*StoreSource)(nil)
)

// ArchiveSource stages a bundle by unpacking a .tar.gz file.
type ArchiveSource struct {
	Path string
}

// Stage unpacks the archive at s.Path into dest.
func (s *ArchiveSource) Stage(ctx context.Context, fs afero.Fs, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := afero.ReadFile(fs, s.Path)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	if err := Unpack(fs, data, dest); err != nil {
		return fmt.Errorf("unpacking %s: %w", s.Path, err)
	}
	return nil
}

func (s *ArchiveSource) String() string {
	return s.Path
}

// StoreSource stages a bundle pulled from a local OCI layout.
type StoreSource struct {
	Store *Store
	Ref   string
}

// Stage pulls s.Ref and unpacks it into dest.
func (s *StoreSource) Stage(ctx context.Context, fs afero.Fs, dest string) error {
	pulled, err := s.Store.Pull(ctx, s.Ref)
	if err != nil {
		return fmt.Errorf("pulling %s: %w", s.Ref, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Unpack(fs, pulled.Data, dest); err != nil {
		return fmt.Errorf("unpacking %s: %w", s.Ref, err)
	}
	return nil
}

func (s *StoreSource) String() string {
	return s.Store.Root() + ":" + s.Ref
}
