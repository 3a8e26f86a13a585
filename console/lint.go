// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"github.com/bacoco/BMad-Skills/installer"
	"github.com/bacoco/BMad-Skills/lint"
)

var checkHeadings = map[string]string{
	lint.CheckRequiredFiles:  "📋 Checking required files...",
	lint.CheckSkillStructure: "📦 Validating skill structure...",
	lint.CheckManifestRules:  "🔢 Checking manifest consistency...",
	lint.CheckTemplateAssets: "📄 Checking template assets...",
}

// LintReport renders a lint report check by check.
func (p *Printer) LintReport(r *lint.Report) {
	p.Plain("🚀 Preparing BMAD Skills for publication")
	for _, c := range r.Checks {
		p.blank()
		heading, ok := checkHeadings[c.Name]
		if !ok {
			heading = c.Name
		}
		p.Plain("%s", heading)
		for _, note := range c.Notes {
			p.Success("  ✓ %s", note)
		}
		for _, f := range c.Findings {
			p.Error("  ✗ %s", f)
		}
	}

	p.blank()
	if r.Passed() {
		p.Success("✅ All validation checks passed!")
		p.Success("   Bundle is ready for publication.")
		return
	}
	p.Error("❌ Validation failed. Please fix the issues above.")
}

// Backups renders the backups kept for target.
func (p *Printer) Backups(target string, backups []installer.Backup) {
	if len(backups) == 0 {
		p.Info("No backups found for %s", target)
		return
	}
	p.Title("💾 Backups of %s (newest first):", target)
	for _, b := range backups {
		p.Plain("   • %s  %s", b.Time.UTC().Format("2006-01-02 15:04:05 MST"), b.Path)
	}
	p.blank()
	p.Info("Backups are never deleted automatically; remove them once you no longer need them.")
}
