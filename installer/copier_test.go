// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTree(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeBundle(t, fs, "/src", bundleLayout{skills: []string{"alpha-beta", "gamma-delta"}, marker: "v1"})
	require.NoError(t, fs.MkdirAll("/src/empty/nested", dirPerm))

	require.NoError(t, CopyTree(fs, "/src", "/out/deep/dst"))

	assert.Equal(t, snapshot(t, fs, "/src"), snapshot(t, fs, "/out/deep/dst"))
}

func TestCopyTree_SingleFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/src/file.txt", "hello")

	require.NoError(t, CopyTree(fs, "/src/file.txt", "/dst/sub/file.txt"))

	data, err := afero.ReadFile(fs, "/dst/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestCopyTree_MissingSource(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	err := CopyTree(fs, "/nope", "/dst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nope")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCopyTree_PropagatesFirstError(t *testing.T) {
	t.Parallel()

	fs := &faultFS{
		Fs: afero.NewMemMapFs(),
		mkdirAll: func(path string) error {
			if filepath.Base(path) == AssetsDir {
				return os.ErrPermission
			}
			return nil
		},
	}
	writeFile(t, fs.Fs, "/src/alpha-beta/assets/x.md", "x")

	err := CopyTree(fs, "/src", "/dst")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), filepath.Join("/dst", "alpha-beta", AssetsDir))
}

func TestCopyTree_FollowsSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs := afero.NewOsFs()
	src := filepath.Join(dir, "src")
	writeFile(t, fs, filepath.Join(dir, "shared", "doc.md"), "shared")
	require.NoError(t, fs.MkdirAll(src, dirPerm))
	require.NoError(t, os.Symlink(filepath.Join(dir, "shared"), filepath.Join(src, "linked")))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, CopyTree(fs, src, dst))

	info, err := os.Lstat(filepath.Join(dst, "linked"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "symlinked directory should be copied as a real directory")

	data, err := os.ReadFile(filepath.Join(dst, "linked", "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "shared", string(data))
}

func TestCopyTree_SymlinkLoop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, dirPerm))
	require.NoError(t, os.Symlink(src, filepath.Join(src, "self")))

	err := CopyTree(afero.NewOsFs(), src, filepath.Join(dir, "dst"))
	require.Error(t, err, "a self-referencing link must not recurse forever")
}
