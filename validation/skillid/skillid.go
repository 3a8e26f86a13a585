// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package skillid

import (
	"fmt"
	"strings"
)

// ReservedPrefix marks internal directories such as _config and _core.
const ReservedPrefix = "_"

// Separator is the character every skill directory name contains.
const Separator = "-"

// Validate checks that id is a single safe path element. Naming
// conventions beyond that are enforced at publish time by lint.
func Validate(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("skill id cannot be empty")
	}

	if strings.Contains(id, "\x00") {
		return fmt.Errorf("skill id cannot contain null bytes")
	}

	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("skill id cannot contain path separators: %q", id)
	}

	if id == "." || id == ".." {
		return fmt.Errorf("skill id cannot be a relative path element: %q", id)
	}

	if strings.HasPrefix(id, ReservedPrefix) {
		return fmt.Errorf("skill id cannot start with %q: %q", ReservedPrefix, id)
	}

	return nil
}

// IsSkillDir reports whether name looks like a skill directory.
func IsSkillDir(name string) bool {
	return strings.Contains(name, Separator) && !strings.HasPrefix(name, ReservedPrefix)
}
