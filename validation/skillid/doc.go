// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package skillid provides validation for skill identifiers.

A skill identifier names a directory directly under the installation root,
so it must be a single safe path element.

# Identifier Validation

	if err := skillid.Validate("bmad-product-planning"); err != nil {
		// reject the manifest entry
	}

Valid identifiers must:
  - Be non-empty
  - Not be "." or ".."
  - Not start with the reserved "_" prefix used for internal directories
  - Not contain null bytes or path separators

Case and character set are not restricted here; a bundle may name a skill
"Alpha-Beta" as long as the directory matches.

# Skill Directories

[IsSkillDir] reports whether a directory name under an installation root
looks like a skill: it contains a dash and does not start with "_".

	skillid.IsSkillDir("alpha-beta") // true
	skillid.IsSkillDir("_config")    // false
	skillid.IsSkillDir("alpha")      // false
*/
package skillid
