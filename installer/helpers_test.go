// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type bundleLayout struct {
	version  string
	skills   []string
	noAssets map[string]bool
	noSkill  map[string]bool
	skipDirs map[string]bool
	marker   string
}

// writeBundle lays out a bundle tree at root.
func writeBundle(t *testing.T, fs afero.Fs, root string, layout bundleLayout) {
	t.Helper()

	if layout.version == "" {
		layout.version = "1.0.0"
	}
	manifest, err := json.Marshal(map[string]any{
		"version": layout.version,
		"skills":  layout.skills,
	})
	require.NoError(t, err)

	for _, dir := range RequiredDirs {
		if layout.skipDirs[dir] {
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Join(root, dir), dirPerm))
	}
	require.NoError(t, fs.MkdirAll(filepath.Join(root, ConfigDir), dirPerm))
	writeFile(t, fs, ManifestPath(root), string(manifest))
	writeFile(t, fs, filepath.Join(root, ConfigDir, "STYLE-GUIDE.md"), "# Style\n")
	if !layout.skipDirs[CoreDir] {
		writeFile(t, fs, filepath.Join(root, CoreDir, "README.md"), "core "+layout.marker)
	}

	for _, id := range layout.skills {
		if layout.noSkill[id] {
			continue
		}
		writeFile(t, fs, filepath.Join(root, id, SkillDescriptor), "---\nname: "+id+"\n---\n"+layout.marker)
		if !layout.noAssets[id] {
			writeFile(t, fs, filepath.Join(root, id, AssetsDir, "prd.template.md"), "template "+layout.marker)
		}
	}
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), dirPerm))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

// snapshot maps every relative path under root to its content, or to
// "<dir>" for directories. A missing root yields nil.
func snapshot(t *testing.T, fs afero.Fs, root string) map[string]string {
	t.Helper()

	if ok, _ := afero.Exists(fs, root); !ok {
		return nil
	}
	out := map[string]string{}
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			out[rel] = "<dir>"
			return nil
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

// siblings returns the names in dir that contain part.
func siblings(t *testing.T, dir, part string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if strings.Contains(e.Name(), part) {
			names = append(names, e.Name())
		}
	}
	return names
}

// faultFS fails selected operations of the wrapped filesystem.
type faultFS struct {
	afero.Fs
	rename    func(oldname, newname string) error
	removeAll func(path string) error
	mkdirAll  func(path string) error
	stat      func(name string) error
}

func (f *faultFS) Stat(name string) (os.FileInfo, error) {
	if f.stat != nil {
		if err := f.stat(name); err != nil {
			return nil, err
		}
	}
	return f.Fs.Stat(name)
}

func (f *faultFS) Rename(oldname, newname string) error {
	if f.rename != nil {
		if err := f.rename(oldname, newname); err != nil {
			return err
		}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *faultFS) RemoveAll(path string) error {
	if f.removeAll != nil {
		if err := f.removeAll(path); err != nil {
			return err
		}
	}
	return f.Fs.RemoveAll(path)
}

func (f *faultFS) MkdirAll(path string, perm os.FileMode) error {
	if f.mkdirAll != nil {
		if err := f.mkdirAll(path); err != nil {
			return err
		}
	}
	return f.Fs.MkdirAll(path, perm)
}

func isTemp(path string) bool {
	return strings.HasPrefix(filepath.Base(path), TempPrefix)
}

func isBackup(path string) bool {
	return strings.Contains(filepath.Base(path), BackupInfix)
}
