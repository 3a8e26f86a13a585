// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"github.com/bacoco/BMad-Skills/installer"
)

var stageMessages = map[installer.Stage]string{
	installer.StageStaging:    "📋 Stage %d/%d: Copying to temporary location...",
	installer.StageValidating: "🔍 Stage %d/%d: Validating installation integrity...",
	installer.StageBackingUp:  "💾 Stage %d/%d: Backing up existing installation...",
	installer.StageCommitting: "⚡ Stage %d/%d: Atomic installation...",
}

// Report renders one install progress event.
func (p *Printer) Report(e installer.Event) {
	switch e.Kind {
	case installer.EventInstallStarted:
		p.Title("📦 Installing BMAD Skills Bundle")
		p.Info("Target: %s", e.Target)
		p.Info("Source: %s", e.Source)
		p.blank()
	case installer.EventStageStarted:
		if msg, ok := stageMessages[e.Stage]; ok {
			p.line(p.style.stage, msg, e.Stage.Step(), installer.TotalSteps)
		}
	case installer.EventStageSkipped:
		p.line(p.style.stage, "📂 Stage %d/%d: No existing installation to backup", e.Stage.Step(), installer.TotalSteps)
	case installer.EventValidated:
		p.Success("✅ Installation validation passed (version %s, %d skills)", e.Version, len(e.Skills))
	case installer.EventBackupCreated:
		p.Warn("⚠️  Existing installation found")
		p.Warn("   Backup created: %s", e.Path)
	case installer.EventInstallSucceeded:
		p.succeeded(e)
	case installer.EventInstallFailed:
		p.blank()
		p.Error("❌ Installation failed!")
		if e.Err != nil {
			p.Error("   Error: %s", e.Err)
		}
		p.blank()
	case installer.EventRollbackStarted:
		p.Warn("🔄 Attempting automatic rollback...")
	case installer.EventRollbackSucceeded:
		p.Success("✅ Rollback successful - previous installation restored")
	case installer.EventRollbackFailed:
		p.Error("❌ Rollback failed!")
		if e.Err != nil {
			p.Error("   Error: %s", e.Err)
		}
		p.Warn("   Manual intervention required. Backup at: %s", e.Path)
	}
}

func (p *Printer) succeeded(e installer.Event) {
	p.blank()
	p.Success("✅ Installation complete!")
	p.blank()

	p.Title("📊 Installed skills:")
	for _, skill := range e.Skills {
		p.Info("   • %s", skill)
	}

	p.blank()
	p.Title("🚀 Next steps:")
	p.Plain("   1. Skills will auto-activate in Claude Code conversations")
	p.Plain(`   2. Try: "I have an idea for a new feature"`)
	p.Plain(`   3. Or: "What's my workflow status?"`)
	p.blank()
	p.Info("📖 Documentation: %s", DocsURL)

	if e.Path != "" {
		p.blank()
		p.Info("💡 Backup saved at: %s", e.Path)
		p.Info("   You can safely delete it after verifying the installation.")
	}
}
