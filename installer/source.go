// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"context"

	"github.com/spf13/afero"
)

// Source materialises a bundle tree at dest during staging. dest does not
// exist when Stage is called; its parent does.
type Source interface {
	Stage(ctx context.Context, fs afero.Fs, dest string) error
	String() string
}

// DirSource is a bundle directory on disk, copied with CopyTree.
type DirSource string

// Stage copies the directory to dest.
func (s DirSource) Stage(ctx context.Context, fs afero.Fs, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return CopyTree(fs, string(s), dest)
}

func (s DirSource) String() string {
	return string(s)
}
