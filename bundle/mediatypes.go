// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import "encoding/json"

// ArtifactTypeBundle identifies skills bundle artifacts in manifests.
const ArtifactTypeBundle = "dev.bmad.skills.bundle.v1"

// Annotation keys for bundle metadata in manifests.
const (
	// AnnotationBundleVersion is the manifest version of the bundle.
	AnnotationBundleVersion = "dev.bmad.skills.bundle.version"

	// AnnotationBundleSkills is the JSON array of skill ids in the bundle.
	AnnotationBundleSkills = "dev.bmad.skills.bundle.skills"
)

// LayerTitle is the org.opencontainers.image.title of the archive layer.
const LayerTitle = "bundle.tar.gz"

// ParseSkillsAnnotation returns the skill ids recorded on a manifest.
// Returns nil if the annotation is missing or invalid.
func ParseSkillsAnnotation(annotations map[string]string) []string {
	raw := annotations[AnnotationBundleSkills]
	if raw == "" {
		return nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}
