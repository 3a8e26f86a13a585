// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package skillid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr string
	}{
		{"simple", "alpha-beta", ""},
		{"with digits and dots", "bmad-v2.1", ""},
		{"underscore inside", "alpha_beta-gamma", ""},
		{"empty", "", "cannot be empty"},
		{"whitespace", "   ", "cannot be empty"},
		{"null byte", "alpha\x00beta", "null bytes"},
		{"forward slash", "alpha/beta", "path separators"},
		{"backslash", `alpha\beta`, "path separators"},
		{"dot dot", "..", "relative path element"},
		{"reserved prefix", "_config", "cannot start with"},
		{"mixed case", "Alpha-Beta", ""},
		{"space", "my skill-x", ""},
		{"symbol", "alpha@beta", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tc.id)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestIsSkillDir(t *testing.T) {
	t.Parallel()

	assert.True(t, IsSkillDir("alpha-beta"))
	assert.True(t, IsSkillDir("bmad-product-planning"))
	assert.False(t, IsSkillDir("alpha"))
	assert.False(t, IsSkillDir("_config"))
	assert.False(t, IsSkillDir("_runtime-state"))
}
