// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import "path/filepath"

// Layout of an installation tree.
const (
	// ConfigDir holds the manifest and the style guide.
	ConfigDir = "_config"
	// CoreDir holds shared logic used by every skill.
	CoreDir = "_core"
	// RuntimeDir holds the per-project workspace.
	RuntimeDir = "_runtime"
	// WorkspaceDir is the workspace area under RuntimeDir.
	WorkspaceDir = "workspace"

	// ManifestFile is the manifest file name inside ConfigDir.
	ManifestFile = "MANIFEST.json"

	// SkillDescriptor is the file every skill directory must contain.
	SkillDescriptor = "SKILL.md"
	// AssetsDir is the directory every skill directory must contain.
	AssetsDir = "assets"
)

// Naming of sibling paths created next to the target.
const (
	// TempPrefix starts the name of a staging directory.
	TempPrefix = ".tmp-skills-install-"
	// BackupInfix separates the target name from the backup timestamp.
	BackupInfix = ".backup."
	// BackupTimeLayout is the timestamp layout used in backup names.
	BackupTimeLayout = "2006-01-02T15-04-05"
)

const dirPerm = 0o755

// RequiredDirs are the top-level directories a valid tree contains.
var RequiredDirs = []string{ConfigDir, CoreDir, RuntimeDir}

// WorkspaceDirs are created empty under _runtime/workspace when absent.
var WorkspaceDirs = []string{"changes", "specs", "artifacts", "stories"}

// ManifestPath returns the manifest location inside root.
func ManifestPath(root string) string {
	return filepath.Join(root, ConfigDir, ManifestFile)
}

func workspacePaths(root string) []string {
	paths := make([]string, 0, len(WorkspaceDirs))
	for _, dir := range WorkspaceDirs {
		paths = append(paths, filepath.Join(root, RuntimeDir, WorkspaceDir, dir))
	}
	return paths
}
