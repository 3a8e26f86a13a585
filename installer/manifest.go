// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed data/manifest.schema.json
var embeddedSchemaFS embed.FS

const manifestSchemaFile = "data/manifest.schema.json"

// Manifest enumerates the bundle version and its skills.
type Manifest struct {
	Version string     `json:"version"`
	Skills  []SkillRef `json:"skills"`
}

// SkillRef names one skill of the bundle. In the manifest it is either a
// bare identifier or an object carrying at least "id".
type SkillRef struct {
	ID           string   `json:"id"`
	Version      string   `json:"version,omitempty"`
	Description  string   `json:"description,omitempty"`
	AllowedTools ToolList `json:"allowed-tools,omitempty"`
	// Path is the skill directory relative to the source repository.
	Path string `json:"path,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *SkillRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*s = SkillRef{ID: id}
		return nil
	}

	type plain SkillRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("skill entry must be a string or an object: %w", err)
	}
	*s = SkillRef(p)
	return nil
}

// ToolList is a list of tool names that also accepts a single
// comma- or space-separated string.
type ToolList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *ToolList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if data[0] == '[' {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*t = arr
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("allowed-tools must be a string or a list of strings: %w", err)
	}
	*t = SplitTools(str)
	return nil
}

// SplitTools splits a tool list written as one string.
func SplitTools(str string) []string {
	if strings.TrimSpace(str) == "" {
		return nil
	}
	var parts []string
	if strings.Contains(str, ",") {
		parts = strings.Split(str, ",")
	} else {
		parts = strings.Fields(str)
	}
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// SkillIDs returns the skill identifiers in manifest order with
// duplicates removed.
func (m *Manifest) SkillIDs() []string {
	seen := make(map[string]struct{}, len(m.Skills))
	ids := make([]string, 0, len(m.Skills))
	for _, s := range m.Skills {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		ids = append(ids, s.ID)
	}
	return ids
}

// Skill returns the entry with the given id.
func (m *Manifest) Skill(id string) (SkillRef, bool) {
	for _, s := range m.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return SkillRef{}, false
}

// ErrManifestSchema is wrapped by manifest documents that parse as JSON
// but do not have the required shape.
var ErrManifestSchema = errors.New("manifest does not match schema")

// SchemaError lists every schema violation of a manifest document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	const prefix = "manifest schema validation failed"
	if len(e.Violations) == 0 {
		return prefix
	}
	return formatNumberedErrors(prefix, e.Violations).Error()
}

// Is reports whether target is ErrManifestSchema.
func (*SchemaError) Is(target error) bool {
	return target == ErrManifestSchema
}

// ParseManifest decodes a manifest document and checks it against the
// embedded schema.
func ParseManifest(data []byte) (*Manifest, error) {
	if !json.Valid(data) {
		var probe any
		err := json.Unmarshal(data, &probe)
		return nil, fmt.Errorf("invalid %s: %w", ManifestFile, err)
	}

	if err := validateManifestSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ManifestFile, err)
	}
	return &m, nil
}

// LoadManifest reads and parses the manifest of the tree at root.
func LoadManifest(fs afero.Fs, root string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, ManifestPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ManifestFile, err)
	}
	return ParseManifest(data)
}

func validateManifestSchema(data []byte) error {
	schemaData, err := embeddedSchemaFS.ReadFile(manifestSchemaFile)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", manifestSchemaFile, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("manifest schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return &SchemaError{Violations: msgs}
}

// formatNumberedErrors formats a list of messages as a single error with a numbered list.
func formatNumberedErrors(prefix string, msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) == 1 {
		return fmt.Errorf("%s: %s", prefix, msgs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s with %d errors:\n", prefix, len(msgs))
	for i, msg := range msgs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, msg)
	}
	return errors.New(strings.TrimSuffix(b.String(), "\n"))
}
