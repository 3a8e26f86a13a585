// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSkillMD = `---
name: alpha-beta
description: Plans the alpha beta workflow
version: 1.0.0
allowed-tools: ["Read", "Write"]
---
# Alpha Beta

## When to Invoke

Use when planning.
`

// createTestBundle writes a minimal valid bundle under a temp dir.
func createTestBundle(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "skills")
	files := map[string]string{
		"_config/MANIFEST.json":        `{"version":"1.0.0","skills":[{"id":"alpha-beta","version":"1.0.0"}]}`,
		"_config/STYLE-GUIDE.md":       "# Style\n",
		"_core/README.md":              "core\n",
		"alpha-beta/SKILL.md":          testSkillMD,
		"alpha-beta/assets/prd.md":     "template\n",
		"alpha-beta/scripts/create.py": "print('hi')\n",
		".git/config":                  "ignored\n",
		"alpha-beta/.DS_Store":         "ignored\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	for _, dir := range []string{"_runtime", "alpha-beta/empty"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755))
	}
	return root
}

// treeFiles lists every regular file and directory under root, slash-separated.
func treeFiles(t *testing.T, root string) []string {
	t.Helper()

	var out []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	require.NoError(t, err)
	return out
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
