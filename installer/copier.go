// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// maxCopyDepth bounds recursion when a symlinked directory points back
// into its own tree.
const maxCopyDepth = 64

// CopyTree copies the file or directory at src to dst, creating missing
// parent directories. Symbolic links are followed and their content
// copied. The first error is returned with the offending path; partial
// output is left in place for the caller to clean up.
func CopyTree(fs afero.Fs, src, dst string) error {
	return copyTree(fs, src, dst, 0)
}

func copyTree(fs afero.Fs, src, dst string, depth int) error {
	if depth > maxCopyDepth {
		return fmt.Errorf("copying %s: directory nesting exceeds %d levels", src, maxCopyDepth)
	}

	info, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}

	if !info.IsDir() {
		return copyFile(fs, src, dst, info.Mode().Perm())
	}

	if err := fs.MkdirAll(dst, dirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if err := copyTree(fs, filepath.Join(src, name), filepath.Join(dst, name), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(fs afero.Fs, src, dst string, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	defer in.Close()

	if perm == 0 {
		perm = 0o644
	}
	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("copying %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return nil
}
