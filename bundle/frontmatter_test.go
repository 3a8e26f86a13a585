// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkillDoc(t *testing.T) {
	t.Parallel()

	doc, err := ParseSkillDoc([]byte(testSkillMD))
	require.NoError(t, err)

	assert.Equal(t, "alpha-beta", doc.Frontmatter.Name)
	assert.Equal(t, "Plans the alpha beta workflow", doc.Frontmatter.Description)
	assert.Equal(t, "1.0.0", doc.Frontmatter.Version)
	assert.Equal(t, []string{"Read", "Write"}, doc.Frontmatter.Tools())
	assert.Equal(t, "alpha-beta", doc.Fields["name"])
	assert.Contains(t, doc.Body, "## When to Invoke")
}

func TestParseSkillDoc_AllowedTools(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"sequence", `["Read", "Grep"]`, []string{"Read", "Grep"}},
		{"comma separated", `"Read, Grep, Bash"`, []string{"Read", "Grep", "Bash"}},
		{"space separated", `Read Grep`, []string{"Read", "Grep"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc, err := ParseSkillDoc([]byte("---\nname: x-y\nallowed-tools: " + tc.value + "\n---\nbody\n"))
			require.NoError(t, err)
			assert.Equal(t, tc.want, doc.Frontmatter.Tools())
		})
	}

	_, err := ParseSkillDoc([]byte("---\nallowed-tools:\n  a: b\n---\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowed-tools")
}

func TestParseSkillDoc_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no frontmatter", "# Title\n", "must start with YAML frontmatter"},
		{"unclosed", "---\nname: x\n", "missing closing delimiter"},
		{"bad yaml", "---\nname: [unclosed\n---\n", "parsing frontmatter YAML"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSkillDoc([]byte(tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestParseSkillDoc_EmptyFrontmatter(t *testing.T) {
	t.Parallel()

	doc, err := ParseSkillDoc([]byte("---\n---\nbody"))
	require.NoError(t, err)
	assert.NotNil(t, doc.Fields)
	assert.Empty(t, doc.Frontmatter.Name)
	assert.Equal(t, "\nbody", doc.Body)
}
