// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package lint checks a skills bundle repository before publication.

Run executes four checks in order and returns a Report:

  - required-files: repository files such as the bundle manifest, the
    style guide, README.md and LICENSE exist.
  - skill-structure: every skill directory carries SKILL.md, REFERENCE.md,
    WORKFLOW.md, CHECKLIST.md, assets/ and scripts/.
  - manifest-rules: CEL rules evaluated once per manifest skill.
  - template-assets: templates referenced by skill scripts exist under
    assets/, and no .jinja templates remain.

# Rules

Rules are boolean CEL expressions over four variables:

	skill        map: id, version, description, path, allowed_tools
	bundle       map: version, package_version, skills
	frontmatter  map: the SKILL.md YAML frontmatter
	body         string: the SKILL.md markdown body

DefaultRules covers version, description and allowed-tools alignment
between SKILL.md and MANIFEST.json. Callers may add their own:

	report, err := lint.Run(lint.Options{
	    Root: ".",
	    Rules: []lint.Rule{{
	        Name:    "has-license",
	        Expr:    `"license" in frontmatter`,
	        Message: "SKILL.md must declare a license",
	    }},
	})
	if err != nil {
	    return err
	}
	if err := report.Err(); err != nil {
	    // one or more checks failed
	}
*/
package lint
