// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/bacoco/BMad-Skills/installer"
)

// maxFrontmatterSize limits frontmatter to prevent YAML parsing attacks.
const maxFrontmatterSize = 64 * 1024

// Frontmatter is the YAML header of a SKILL.md file.
type Frontmatter struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Version      string            `yaml:"version,omitempty"`
	AllowedTools toolList          `yaml:"allowed-tools,omitempty"`
	License      string            `yaml:"license,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}

// SkillDoc is a parsed SKILL.md.
type SkillDoc struct {
	Frontmatter Frontmatter
	// Fields holds every frontmatter key as decoded YAML.
	Fields map[string]any
	// Body is the markdown after the closing delimiter.
	Body string
}

// Tools returns the allowed tools as a plain slice.
func (f Frontmatter) Tools() []string {
	return []string(f.AllowedTools)
}

// toolList accepts either a YAML sequence or a single string.
type toolList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *toolList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*s = installer.SplitTools(value.Value)
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := value.Decode(&arr); err != nil {
			return fmt.Errorf("allowed-tools: %w", err)
		}
		*s = arr
		return nil
	case yaml.DocumentNode, yaml.MappingNode, yaml.AliasNode:
		return fmt.Errorf("allowed-tools: expected string or array, got unsupported YAML node type")
	}
	return fmt.Errorf("allowed-tools: unexpected YAML node kind %d", value.Kind)
}

// ParseSkillDoc splits a SKILL.md into frontmatter and body.
func ParseSkillDoc(content []byte) (*SkillDoc, error) {
	content = bytes.TrimSpace(content)

	delimiter := []byte("---")
	if !bytes.HasPrefix(content, delimiter) {
		return nil, fmt.Errorf("SKILL.md must start with YAML frontmatter (---)")
	}

	rest := content[len(delimiter):]
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	endIdx := bytes.Index(rest, delimiter)
	if endIdx == -1 {
		return nil, fmt.Errorf("SKILL.md frontmatter missing closing delimiter (---)")
	}

	fmBytes := rest[:endIdx]
	if len(fmBytes) > maxFrontmatterSize {
		return nil, fmt.Errorf("frontmatter exceeds maximum size of %d bytes", maxFrontmatterSize)
	}

	doc := &SkillDoc{
		Fields: map[string]any{},
		Body:   string(rest[endIdx+len(delimiter):]),
	}
	if err := yaml.Unmarshal(fmBytes, &doc.Frontmatter); err != nil {
		return nil, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}
	if err := yaml.Unmarshal(fmBytes, &doc.Fields); err != nil {
		return nil, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	return doc, nil
}
