// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"context"
	"log/slog"
)

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks Reporter

// EventKind identifies a progress event.
type EventKind int

const (
	// EventInstallStarted carries Target and Source.
	EventInstallStarted EventKind = iota + 1
	// EventStageStarted carries Stage.
	EventStageStarted
	// EventStageSkipped carries Stage; only StageBackingUp is ever skipped.
	EventStageSkipped
	// EventValidated carries Version and Skills of the staged tree.
	EventValidated
	// EventBackupCreated carries Path.
	EventBackupCreated
	// EventInstallSucceeded carries Target, Skills and Path (the backup, if any).
	EventInstallSucceeded
	// EventInstallFailed carries Stage and Err.
	EventInstallFailed
	// EventRollbackStarted carries Path (the backup being restored).
	EventRollbackStarted
	// EventRollbackSucceeded carries Path.
	EventRollbackSucceeded
	// EventRollbackFailed carries Path and Err.
	EventRollbackFailed
	// EventTempRemoved carries Path.
	EventTempRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventInstallStarted:
		return "install-started"
	case EventStageStarted:
		return "stage-started"
	case EventStageSkipped:
		return "stage-skipped"
	case EventValidated:
		return "validated"
	case EventBackupCreated:
		return "backup-created"
	case EventInstallSucceeded:
		return "install-succeeded"
	case EventInstallFailed:
		return "install-failed"
	case EventRollbackStarted:
		return "rollback-started"
	case EventRollbackSucceeded:
		return "rollback-succeeded"
	case EventRollbackFailed:
		return "rollback-failed"
	case EventTempRemoved:
		return "temp-removed"
	default:
		return "unknown"
	}
}

// Event is one structured progress notification from an install attempt.
type Event struct {
	Kind    EventKind
	Stage   Stage
	Target  string
	Source  string
	Path    string
	Version string
	Skills  []string
	Err     error
}

// Reporter receives progress events. Implementations must not block.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) {
	f(e)
}

// NopReporter discards every event.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(Event) {}

// MultiReporter fans each event out to every reporter in order.
type MultiReporter []Reporter

// Report forwards e to each non-nil reporter.
func (m MultiReporter) Report(e Event) {
	for _, r := range m {
		if r != nil {
			r.Report(e)
		}
	}
}

// LogReporter writes events to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report logs e at a level matching its severity.
func (r *LogReporter) Report(e Event) {
	attrs := []slog.Attr{slog.String("event", e.Kind.String())}
	if e.Stage != 0 {
		attrs = append(attrs, slog.String("stage", e.Stage.String()))
	}
	if e.Target != "" {
		attrs = append(attrs, slog.String("target", e.Target))
	}
	if e.Source != "" {
		attrs = append(attrs, slog.String("source", e.Source))
	}
	if e.Path != "" {
		attrs = append(attrs, slog.String("path", e.Path))
	}
	if e.Version != "" {
		attrs = append(attrs, slog.String("version", e.Version))
	}
	if len(e.Skills) > 0 {
		attrs = append(attrs, slog.Any("skills", e.Skills))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("err", e.Err.Error()))
	}

	level := slog.LevelInfo
	switch e.Kind {
	case EventInstallFailed, EventRollbackStarted:
		level = slog.LevelWarn
	case EventRollbackFailed:
		level = slog.LevelError
	}
	r.logger.LogAttrs(context.Background(), level, "install progress", attrs...)
}
