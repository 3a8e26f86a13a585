// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/bacoco/BMad-Skills/logging"
	"github.com/bacoco/BMad-Skills/recovery"
	"github.com/bacoco/BMad-Skills/validation/skillid"
)

// Result describes a committed installation.
type Result struct {
	Target string
	// BackupPath is the previous installation, or empty if there was none.
	BackupPath string
	// Skills are the installed skill directory names, sorted.
	Skills  []string
	Version string
}

// Installer performs transactional installs.
type Installer struct {
	fs       afero.Fs
	reporter Reporter
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures an Installer.
type Option func(*Installer)

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(i *Installer) {
		i.fs = fs
	}
}

// WithReporter sets the progress sink.
func WithReporter(r Reporter) Option {
	return func(i *Installer) {
		i.reporter = r
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Installer) {
		i.logger = l
	}
}

// WithClock sets the time source used for temp and backup names.
func WithClock(now func() time.Time) Option {
	return func(i *Installer) {
		i.now = now
	}
}

// WithIDGenerator sets the random suffix source for staging paths.
func WithIDGenerator(gen func() string) Option {
	return func(i *Installer) {
		i.newID = gen
	}
}

// New creates an Installer.
func New(opts ...Option) *Installer {
	i := &Installer{
		fs:       afero.NewOsFs(),
		reporter: NopReporter{},
		logger:   logging.NewNop(),
		now:      time.Now,
		newID:    shortID,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.reporter == nil {
		i.reporter = NopReporter{}
	}
	if i.logger == nil {
		i.logger = logging.NewNop()
	}
	return i
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// attempt is the state of one Install call.
type attempt struct {
	source     Source
	target     string
	temp       string
	backupPath string
	manifest   *Manifest
	skills     []string
}

// Install copies the bundle directory src into target.
func (i *Installer) Install(ctx context.Context, src, target string) (*Result, error) {
	return i.InstallFrom(ctx, DirSource(src), target)
}

// InstallFrom stages source next to target, validates the staged tree,
// moves any existing target aside and renames the staged tree into place.
//
// On failure the previous target is restored and the staged tree removed.
// The returned error is a *StageError wrapping the cause, or a
// *RollbackError when the previous target could not be restored.
func (i *Installer) InstallFrom(ctx context.Context, source Source, target string) (*Result, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving target %s: %w", target, err)
	}
	a := &attempt{
		source: source,
		target: abs,
		temp:   i.tempPath(abs),
	}
	i.reporter.Report(Event{Kind: EventInstallStarted, Target: a.target, Source: source.String()})
	i.logger.Debug("install attempt", "source", source.String(), "target", a.target, "temp", a.temp)

	if err := i.run(ctx, a); err != nil {
		return nil, i.rollback(a, err)
	}

	res := &Result{
		Target:     a.target,
		BackupPath: a.backupPath,
		Skills:     a.skills,
		Version:    a.manifest.Version,
	}
	i.reporter.Report(Event{
		Kind:   EventInstallSucceeded,
		Stage:  StageDone,
		Target: res.Target,
		Path:   res.BackupPath,
		Skills: res.Skills,
	})
	return res, nil
}

// failure carries the stage a pipeline error came from to rollback.
type failure struct {
	stage Stage
	err   error
}

func (f *failure) Error() string { return f.err.Error() }
func (f *failure) Unwrap() error { return f.err }

func (i *Installer) run(ctx context.Context, a *attempt) error {
	steps := []struct {
		stage Stage
		fn    func(context.Context, *attempt) error
	}{
		{StageStaging, i.stage},
		{StageValidating, i.validate},
		{StageBackingUp, i.backup},
		{StageCommitting, i.commit},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &failure{stage: step.stage, err: err}
		}
		err := recovery.Do(func() error {
			return step.fn(ctx, a)
		})
		if err != nil {
			return &failure{stage: step.stage, err: err}
		}
	}
	return nil
}

func (i *Installer) stage(ctx context.Context, a *attempt) error {
	i.reporter.Report(Event{Kind: EventStageStarted, Stage: StageStaging, Path: a.temp})

	parent := filepath.Dir(a.temp)
	if err := i.fs.MkdirAll(parent, dirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", parent, err)
	}

	i.logger.Debug("copying", "src", a.source.String(), "dst", a.temp)
	if err := a.source.Stage(ctx, i.fs, a.temp); err != nil {
		return err
	}

	for _, dir := range workspacePaths(a.temp) {
		ok, err := afero.DirExists(i.fs, dir)
		if err != nil {
			return fmt.Errorf("checking %s: %w", dir, err)
		}
		if ok {
			continue
		}
		if err := i.fs.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("creating runtime directory %s: %w", dir, err)
		}
		i.logger.Debug("created runtime directory", "path", dir)
	}
	return nil
}

func (i *Installer) validate(_ context.Context, a *attempt) error {
	i.reporter.Report(Event{Kind: EventStageStarted, Stage: StageValidating, Path: a.temp})

	manifest, err := NewValidator(i.fs, i.logger).Validate(a.temp)
	if err != nil {
		return err
	}
	a.manifest = manifest
	i.reporter.Report(Event{
		Kind:    EventValidated,
		Stage:   StageValidating,
		Version: manifest.Version,
		Skills:  manifest.SkillIDs(),
	})
	return nil
}

func (i *Installer) backup(_ context.Context, a *attempt) error {
	exists, err := afero.Exists(i.fs, a.target)
	if err != nil {
		return fmt.Errorf("checking %s: %w", a.target, err)
	}

	if !exists {
		i.reporter.Report(Event{Kind: EventStageSkipped, Stage: StageBackingUp, Target: a.target})
		parent := filepath.Dir(a.target)
		if err := i.fs.MkdirAll(parent, dirPerm); err != nil {
			return fmt.Errorf("creating %s: %w", parent, err)
		}
		return nil
	}

	i.reporter.Report(Event{Kind: EventStageStarted, Stage: StageBackingUp, Target: a.target})
	path, err := NewBackupManager(i.fs, i.now, i.logger).Backup(a.target)
	if err != nil {
		return err
	}
	a.backupPath = path
	i.reporter.Report(Event{Kind: EventBackupCreated, Stage: StageBackingUp, Path: path})
	return nil
}

func (i *Installer) commit(_ context.Context, a *attempt) error {
	skills, err := listSkillDirs(i.fs, a.temp)
	if err != nil {
		return err
	}
	a.skills = skills

	i.reporter.Report(Event{Kind: EventStageStarted, Stage: StageCommitting, Target: a.target})
	i.logger.Debug("renaming", "src", a.temp, "dst", a.target)
	if err := i.fs.Rename(a.temp, a.target); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", a.temp, a.target, err)
	}
	return nil
}

// rollback restores the previous target and removes the staged tree.
// Cleanup failures of the staged tree are logged and do not change the
// returned error.
func (i *Installer) rollback(a *attempt, err error) error {
	stage := StageStaging
	cause := err
	if f, ok := err.(*failure); ok {
		stage, cause = f.stage, f.err
	}
	stageErr := &StageError{Stage: stage, Err: cause}
	i.reporter.Report(Event{Kind: EventInstallFailed, Stage: stage, Target: a.target, Err: cause})
	i.logger.Warn("install failed", "stage", stage.String(), "error", cause)

	var restoreErr error
	if a.backupPath != "" {
		i.reporter.Report(Event{Kind: EventRollbackStarted, Stage: StageRollingBack, Path: a.backupPath})
		restoreErr = recovery.Do(func() error {
			return NewBackupManager(i.fs, i.now, i.logger).Restore(a.backupPath, a.target)
		})
		if restoreErr != nil {
			i.reporter.Report(Event{
				Kind:  EventRollbackFailed,
				Stage: StageRollingBack,
				Path:  a.backupPath,
				Err:   restoreErr,
			})
			i.logger.Error("rollback failed", "backup", a.backupPath, "error", restoreErr)
		} else {
			i.reporter.Report(Event{Kind: EventRollbackSucceeded, Stage: StageRollingBack, Path: a.target})
		}
	}

	switch ok, err := afero.Exists(i.fs, a.temp); {
	case err != nil:
		i.logger.Warn("could not check staged tree", "path", a.temp, "error", err)
	case ok:
		i.logger.Debug("removing", "path", a.temp)
		if err := i.fs.RemoveAll(a.temp); err != nil {
			i.logger.Warn("could not remove staged tree", "path", a.temp, "error", err)
		} else {
			i.reporter.Report(Event{Kind: EventTempRemoved, Stage: StageRollingBack, Path: a.temp})
		}
	}

	if restoreErr != nil {
		return &RollbackError{BackupPath: a.backupPath, Cause: stageErr, Err: restoreErr}
	}
	return stageErr
}

func (i *Installer) tempPath(target string) string {
	name := fmt.Sprintf("%s%d-%s", TempPrefix, i.now().UnixMilli(), i.newID())
	return filepath.Join(filepath.Dir(target), name)
}

// Backups lists the backups kept next to target, newest first.
func (i *Installer) Backups(target string) ([]Backup, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving target %s: %w", target, err)
	}
	return NewBackupManager(i.fs, i.now, i.logger).List(abs)
}

// InstalledSkills lists the skill directories of an installation tree.
func InstalledSkills(fs afero.Fs, root string) ([]string, error) {
	return listSkillDirs(fs, root)
}

func listSkillDirs(fs afero.Fs, root string) ([]string, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	var skills []string
	for _, entry := range entries {
		if entry.IsDir() && skillid.IsSkillDir(entry.Name()) {
			skills = append(skills, entry.Name())
		}
	}
	sort.Strings(skills)
	return skills, nil
}
