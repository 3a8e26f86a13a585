// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"github.com/bacoco/BMad-Skills/bundle"
	"github.com/bacoco/BMad-Skills/installer"
)

// Rule is a named boolean CEL expression evaluated once per manifest skill.
// A rule that evaluates to false produces a finding carrying Message.
type Rule struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Expr    string `yaml:"expr" mapstructure:"expr"`
	Message string `yaml:"message" mapstructure:"message"`
}

// WhenToInvokeHeading is the section every SKILL.md body must document.
const WhenToInvokeHeading = "## When to Invoke"

// SkillIDPattern is the naming convention published skill ids follow.
const SkillIDPattern = `^[a-z0-9._-]+$`

// DefaultRules returns the built-in manifest consistency rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "skill-id-format",
			Expr:    `skill.id.matches("` + SkillIDPattern + `")`,
			Message: "skill id must be lowercase alphanumeric characters, dots, underscores and dashes",
		},
		{
			Name:    "package-version",
			Expr:    `skill.version == bundle.package_version`,
			Message: "skill version does not match the package version",
		},
		{
			Name:    "frontmatter-version",
			Expr:    `"version" in frontmatter ? string(frontmatter.version) == skill.version : skill.version == ""`,
			Message: "SKILL.md version does not match MANIFEST.json",
		},
		{
			Name:    "frontmatter-description",
			Expr:    `"description" in frontmatter ? frontmatter.description == skill.description : skill.description == ""`,
			Message: "SKILL.md description does not match MANIFEST.json",
		},
		{
			Name:    "frontmatter-allowed-tools",
			Expr:    `"allowed-tools" in frontmatter ? frontmatter["allowed-tools"] == skill.allowed_tools : size(skill.allowed_tools) == 0`,
			Message: "SKILL.md allowed-tools do not match MANIFEST.json",
		},
		{
			Name:    "when-to-invoke",
			Expr:    `body.contains("` + WhenToInvokeHeading + `")`,
			Message: "SKILL.md is missing a '" + WhenToInvokeHeading + "' section",
		},
	}
}

// ruleVars builds the evaluation context for one manifest skill.
func ruleVars(m *installer.Manifest, packageVersion string, ref installer.SkillRef, doc *bundle.SkillDoc) map[string]any {
	tools := ref.AllowedTools
	if tools == nil {
		tools = installer.ToolList{}
	}
	skill := map[string]any{
		"id":            ref.ID,
		"version":       ref.Version,
		"description":   ref.Description,
		"path":          ref.Path,
		"allowed_tools": []string(tools),
	}

	if packageVersion == "" {
		packageVersion = m.Version
	}
	bundleVars := map[string]any{
		"version":         m.Version,
		"package_version": packageVersion,
		"skills":          m.SkillIDs(),
	}

	frontmatter := make(map[string]any, len(doc.Fields))
	for k, v := range doc.Fields {
		frontmatter[k] = v
	}
	if _, ok := frontmatter["allowed-tools"]; ok {
		frontmatter["allowed-tools"] = doc.Frontmatter.Tools()
	}

	return map[string]any{
		VarSkill:       skill,
		VarBundle:      bundleVars,
		VarFrontmatter: frontmatter,
		VarBody:        doc.Body,
	}
}
