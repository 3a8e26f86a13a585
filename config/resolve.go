// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"

	"github.com/bacoco/BMad-Skills/bundle"
	"github.com/bacoco/BMad-Skills/env"
	"github.com/bacoco/BMad-Skills/installer"
)

// SkillsDir is the install location relative to a project or home directory.
var SkillsDir = filepath.Join(".claude", "skills")

// HomeDir returns $HOME (or %USERPROFILE%), falling back to the platform
// home directory.
func HomeDir(r env.Reader) string {
	if home := env.FirstSet(r, "HOME", "USERPROFILE"); home != "" {
		return home
	}
	return xdg.Home
}

// Target resolves the installation directory. --global wins over --path;
// without either the project directory cwd is used.
func (c *Config) Target(r env.Reader, cwd string) string {
	switch {
	case c.Global:
		return filepath.Join(HomeDir(r), SkillsDir)
	case c.Path != "":
		return absFrom(cwd, c.Path)
	default:
		return filepath.Join(cwd, SkillsDir)
	}
}

// SourceKind identifies where a bundle is staged from.
type SourceKind int

const (
	// SourceDir copies a bundle directory.
	SourceDir SourceKind = iota
	// SourceArchive unpacks a .tar.gz archive.
	SourceArchive
	// SourceOCILayout pulls from a local OCI image layout.
	SourceOCILayout
)

func (k SourceKind) String() string {
	switch k {
	case SourceArchive:
		return "archive"
	case SourceOCILayout:
		return "oci-layout"
	default:
		return "directory"
	}
}

// SourceSpec describes the resolved bundle source.
type SourceSpec struct {
	Kind SourceKind
	Path string
	Ref  string
}

// ResolveSource picks the bundle source: --archive, then --oci-layout with
// --ref, then --source, then the bundle shipped next to the executable.
func (c *Config) ResolveSource(cwd, executable string) SourceSpec {
	switch {
	case c.Archive != "":
		return SourceSpec{Kind: SourceArchive, Path: absFrom(cwd, c.Archive)}
	case c.OCILayout != "":
		ref := c.Ref
		if ref == "" {
			ref = DefaultRef
		}
		return SourceSpec{Kind: SourceOCILayout, Path: absFrom(cwd, c.OCILayout), Ref: ref}
	case c.Source != "":
		return SourceSpec{Kind: SourceDir, Path: absFrom(cwd, c.Source)}
	default:
		return SourceSpec{Kind: SourceDir, Path: BundledSource(executable)}
	}
}

// BundledSource returns the bundle directory shipped alongside executable.
func BundledSource(executable string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(executable)), SkillsDir)
}

// Open returns the installer source for s. An OCI layout must already
// exist on fs.
func (s SourceSpec) Open(fs afero.Fs) (installer.Source, error) {
	switch s.Kind {
	case SourceArchive:
		return &bundle.ArchiveSource{Path: s.Path}, nil
	case SourceOCILayout:
		if ok, err := afero.DirExists(fs, s.Path); err != nil || !ok {
			return nil, fmt.Errorf("OCI layout not found: %s", s.Path)
		}
		store, err := bundle.NewStore(s.Path)
		if err != nil {
			return nil, fmt.Errorf("opening OCI layout: %w", err)
		}
		return &bundle.StoreSource{Store: store, Ref: s.Ref}, nil
	default:
		return installer.DirSource(s.Path), nil
	}
}

func (s SourceSpec) String() string {
	if s.Kind == SourceOCILayout {
		return fmt.Sprintf("%s %s:%s", s.Kind, s.Path, s.Ref)
	}
	return fmt.Sprintf("%s %s", s.Kind, s.Path)
}

// InBundleRepo reports whether cwd is the bundle's own repository, which
// carries a manifest under .claude/skills.
func InBundleRepo(fs afero.Fs, cwd string) bool {
	ok, err := afero.Exists(fs, installer.ManifestPath(filepath.Join(cwd, SkillsDir)))
	return err == nil && ok
}
