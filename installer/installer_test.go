// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bacoco/BMad-Skills/recovery"
)

type installFixture struct {
	dir    string
	source string
	target string
	fs     afero.Fs
}

func newFixture(t *testing.T, layout bundleLayout) *installFixture {
	t.Helper()

	dir := t.TempDir()
	f := &installFixture{
		dir:    dir,
		source: filepath.Join(dir, "bundle"),
		target: filepath.Join(dir, "project", ".claude", "skills"),
		fs:     afero.NewOsFs(),
	}
	writeBundle(t, f.fs, f.source, layout)
	return f
}

// seedTarget installs a distinct previous tree at the target.
func (f *installFixture) seedTarget(t *testing.T) map[string]string {
	t.Helper()
	writeBundle(t, f.fs, f.target, bundleLayout{version: "0.9.0", skills: []string{"old-skill"}, marker: "previous"})
	return snapshot(t, f.fs, f.target)
}

func (f *installFixture) parent() string {
	return filepath.Dir(f.target)
}

func fixedClock() func() time.Time {
	return func() time.Time { return fixedNow }
}

func TestInstall_FreshTarget(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{version: "1.0.0", skills: []string{"alpha-beta"}})
	inst := New(WithFs(f.fs), WithClock(fixedClock()))

	res, err := inst.Install(context.Background(), f.source, f.target)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha-beta"}, res.Skills)
	assert.Equal(t, "1.0.0", res.Version)
	assert.Equal(t, f.target, res.Target)
	assert.Empty(t, res.BackupPath)

	assert.FileExists(t, filepath.Join(f.target, "alpha-beta", SkillDescriptor))
	for _, dir := range workspacePaths(f.target) {
		assert.DirExists(t, dir)
	}
	assert.Empty(t, siblings(t, f.parent(), TempPrefix))
	assert.Empty(t, siblings(t, f.parent(), BackupInfix))
}

func TestInstall_MissingAssetsLeavesTargetUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{
		skills:   []string{"alpha-beta"},
		noAssets: map[string]bool{"alpha-beta": true},
	})
	before := f.seedTarget(t)

	_, err := New(WithFs(f.fs)).Install(context.Background(), f.source, f.target)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "alpha-beta")
	assert.Contains(t, err.Error(), "assets")
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, []string{"alpha-beta"}, integrity.Skills(ProblemAssetsMissing))
	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageValidating, stage)

	assert.Equal(t, before, snapshot(t, f.fs, f.target))
	assert.Empty(t, siblings(t, f.parent(), BackupInfix))
	assert.Empty(t, siblings(t, f.parent(), TempPrefix))
}

func TestInstall_ExistingTargetIsBackedUp(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{version: "2.0.0", skills: []string{"alpha-beta", "gamma-delta"}, marker: "new"})
	before := f.seedTarget(t)

	res, err := New(WithFs(f.fs), WithClock(fixedClock())).Install(context.Background(), f.source, f.target)
	require.NoError(t, err)

	wantBackup := f.target + ".backup.2026-03-01T12-00-00"
	assert.Equal(t, wantBackup, res.BackupPath)
	assert.Equal(t, before, snapshot(t, f.fs, wantBackup))
	assert.Equal(t, []string{"alpha-beta", "gamma-delta"}, res.Skills)

	got := snapshot(t, f.fs, f.target)
	for rel, content := range snapshot(t, f.fs, f.source) {
		assert.Equal(t, content, got[rel], rel)
	}
	assert.NotContains(t, got, "old-skill")
}

func TestInstall_ReinstallIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
	now := fixedNow
	inst := New(WithFs(f.fs), WithClock(func() time.Time { return now }))

	_, err := inst.Install(context.Background(), f.source, f.target)
	require.NoError(t, err)
	first := snapshot(t, f.fs, f.target)

	now = now.Add(time.Second)
	res, err := inst.Install(context.Background(), f.source, f.target)
	require.NoError(t, err)

	assert.Equal(t, first, snapshot(t, f.fs, f.target))
	assert.Equal(t, first, snapshot(t, f.fs, res.BackupPath))
	assert.Len(t, siblings(t, f.parent(), BackupInfix), 1)

	backups, err := inst.Backups(f.target)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, res.BackupPath, backups[0].Path)
}

func TestInstall_SameSecondBackupsDoNotCollide(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
	inst := New(WithFs(f.fs), WithClock(fixedClock()))

	for i := 0; i < 3; i++ {
		_, err := inst.Install(context.Background(), f.source, f.target)
		require.NoError(t, err)
	}

	assert.ElementsMatch(t, []string{
		"skills.backup.2026-03-01T12-00-00",
		"skills.backup.2026-03-01T12-00-00-1",
	}, siblings(t, f.parent(), BackupInfix))
}

func TestInstall_TempPathIsUnique(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
	var staged string
	rep := ReporterFunc(func(e Event) {
		if e.Kind == EventStageStarted && e.Stage == StageStaging {
			staged = e.Path
		}
	})

	inst := New(
		WithFs(f.fs),
		WithReporter(rep),
		WithClock(fixedClock()),
		WithIDGenerator(func() string { return "0badc0de" }),
	)
	_, err := inst.Install(context.Background(), f.source, f.target)
	require.NoError(t, err)

	want := filepath.Join(f.parent(), ".tmp-skills-install-1772366400000-0badc0de")
	assert.Equal(t, want, staged)
	assert.Len(t, shortID(), 8)
	assert.NotEqual(t, shortID(), shortID())
}

func TestInstall_FailuresRestorePreviousTarget(t *testing.T) {
	t.Parallel()

	boom := errors.New("injected failure")

	tests := []struct {
		name      string
		fault     func(f *faultFS, parent string)
		wantStage Stage
		seed      bool
	}{
		{
			name: "staging mkdir fails",
			fault: func(f *faultFS, _ string) {
				f.mkdirAll = func(path string) error {
					if filepath.Base(path) == "stories" {
						return boom
					}
					return nil
				}
			},
			wantStage: StageStaging,
			seed:      true,
		},
		{
			name: "backup rename fails",
			fault: func(f *faultFS, _ string) {
				f.rename = func(oldname, newname string) error {
					if isBackup(newname) {
						return boom
					}
					return nil
				}
			},
			wantStage: StageBackingUp,
			seed:      true,
		},
		{
			name: "commit rename fails with backup",
			fault: func(f *faultFS, _ string) {
				f.rename = func(oldname, _ string) error {
					if isTemp(oldname) {
						return boom
					}
					return nil
				}
			},
			wantStage: StageCommitting,
			seed:      true,
		},
		{
			name: "commit rename fails without backup",
			fault: func(f *faultFS, _ string) {
				f.rename = func(oldname, _ string) error {
					if isTemp(oldname) {
						return boom
					}
					return nil
				}
			},
			wantStage: StageCommitting,
			seed:      false,
		},
		{
			name: "target parent creation fails without backup",
			fault: func(f *faultFS, parent string) {
				calls := 0
				f.mkdirAll = func(path string) error {
					if path != parent {
						return nil
					}
					calls++
					if calls == 2 {
						return boom
					}
					return nil
				}
			},
			wantStage: StageBackingUp,
			seed:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}, marker: "new"})
			var before map[string]string
			if tc.seed {
				before = f.seedTarget(t)
			}
			ffs := &faultFS{Fs: f.fs}
			tc.fault(ffs, f.parent())

			_, err := New(WithFs(ffs), WithClock(fixedClock())).Install(context.Background(), f.source, f.target)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.NotErrorIs(t, err, ErrManualIntervention)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tc.wantStage, stageErr.Stage)

			assert.Equal(t, before, snapshot(t, f.fs, f.target))
			assert.Empty(t, siblings(t, f.parent(), TempPrefix))
			assert.Empty(t, siblings(t, f.parent(), BackupInfix))
		})
	}
}

func TestInstall_RollbackFailureKeepsBackup(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}, marker: "new"})
	before := f.seedTarget(t)
	boom := errors.New("commit refused")
	restoreErr := errors.New("restore refused")

	ffs := &faultFS{
		Fs: f.fs,
		rename: func(oldname, _ string) error {
			switch {
			case isTemp(oldname):
				return boom
			case isBackup(oldname):
				return restoreErr
			}
			return nil
		},
	}

	var kinds []EventKind
	rep := ReporterFunc(func(e Event) { kinds = append(kinds, e.Kind) })

	_, err := New(WithFs(ffs), WithReporter(rep), WithClock(fixedClock())).
		Install(context.Background(), f.source, f.target)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrManualIntervention)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, restoreErr)

	backup, ok := SurvivingBackup(err)
	require.True(t, ok)
	assert.Equal(t, f.target+".backup.2026-03-01T12-00-00", backup)
	assert.Equal(t, before, snapshot(t, f.fs, backup))
	assert.Contains(t, err.Error(), backup)

	assert.Contains(t, kinds, EventRollbackFailed)
	assert.NotContains(t, kinds, EventRollbackSucceeded)
	assert.Empty(t, siblings(t, f.parent(), TempPrefix))
}

func TestInstall_MissingBackupEscalates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}, marker: "new"})
	f.seedTarget(t)
	boom := errors.New("commit refused")
	backup := f.target + ".backup.2026-03-01T12-00-00"

	ffs := &faultFS{
		Fs: f.fs,
		rename: func(oldname, _ string) error {
			if isTemp(oldname) {
				// The backup vanishes between backup and commit.
				if err := f.fs.RemoveAll(backup); err != nil {
					return err
				}
				return boom
			}
			return nil
		},
	}

	var kinds []EventKind
	rep := ReporterFunc(func(e Event) { kinds = append(kinds, e.Kind) })

	_, err := New(WithFs(ffs), WithReporter(rep), WithClock(fixedClock())).
		Install(context.Background(), f.source, f.target)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrManualIntervention)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "backup not found")

	path, ok := SurvivingBackup(err)
	require.True(t, ok)
	assert.Equal(t, backup, path)

	assert.Contains(t, kinds, EventRollbackStarted)
	assert.Contains(t, kinds, EventRollbackFailed)
	assert.NotContains(t, kinds, EventRollbackSucceeded)
	assert.Empty(t, siblings(t, f.parent(), TempPrefix))
}

func TestInstall_WorkspaceStatErrorFailsStaging(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
	statErr := errors.New("stat refused")

	ffs := &faultFS{
		Fs: f.fs,
		stat: func(name string) error {
			if strings.Contains(name, TempPrefix) && filepath.Base(name) == "changes" {
				return statErr
			}
			return nil
		},
	}

	_, err := New(WithFs(ffs), WithClock(fixedClock())).
		Install(context.Background(), f.source, f.target)
	require.Error(t, err)
	assert.ErrorIs(t, err, statErr)

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageStaging, stage)
	assert.NoDirExists(t, f.target)
	assert.Empty(t, siblings(t, f.parent(), TempPrefix))
}

func TestInstall_MissingSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
	before := f.seedTarget(t)

	_, err := New(WithFs(f.fs)).Install(context.Background(), filepath.Join(f.dir, "nope"), f.target)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageStaging, stage)
	assert.Equal(t, before, snapshot(t, f.fs, f.target))
}

type panicSource struct{}

func (panicSource) Stage(context.Context, afero.Fs, string) error { panic("source exploded") }
func (panicSource) String() string                                { return "panic" }

func TestInstall_PanicIsRolledBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
	before := f.seedTarget(t)

	_, err := New(WithFs(f.fs)).InstallFrom(context.Background(), panicSource{}, f.target)
	require.Error(t, err)

	var panicErr *recovery.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "source exploded", panicErr.Value)
	assert.Equal(t, before, snapshot(t, f.fs, f.target))
}

// cancelSource cancels the install context after staging succeeds.
type cancelSource struct {
	DirSource
	cancel context.CancelFunc
}

func (s cancelSource) Stage(ctx context.Context, fs afero.Fs, dest string) error {
	err := s.DirSource.Stage(ctx, fs, dest)
	s.cancel()
	return err
}

func TestInstall_CancellationIsAFailure(t *testing.T) {
	t.Parallel()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(WithFs(f.fs)).Install(ctx, f.source, f.target)
		require.ErrorIs(t, err, context.Canceled)
		assert.NoDirExists(t, f.target)
	})

	t.Run("between stages", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
		before := f.seedTarget(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		src := cancelSource{DirSource: DirSource(f.source), cancel: cancel}
		_, err := New(WithFs(f.fs)).InstallFrom(ctx, src, f.target)
		require.ErrorIs(t, err, context.Canceled)

		stage, _ := FailedStage(err)
		assert.Equal(t, StageValidating, stage)
		assert.Equal(t, before, snapshot(t, f.fs, f.target))
		assert.Empty(t, siblings(t, f.parent(), TempPrefix))
	})
}

func TestInstall_EventSequence(t *testing.T) {
	t.Parallel()

	f := newFixture(t, bundleLayout{skills: []string{"alpha-beta"}})
	f.seedTarget(t)

	var events []Event
	rep := ReporterFunc(func(e Event) { events = append(events, e) })

	_, err := New(WithFs(f.fs), WithReporter(rep)).Install(context.Background(), f.source, f.target)
	require.NoError(t, err)

	var kinds []EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{
		EventInstallStarted,
		EventStageStarted,
		EventStageStarted,
		EventValidated,
		EventStageStarted,
		EventBackupCreated,
		EventStageStarted,
		EventInstallSucceeded,
	}, kinds)
	assert.Equal(t, StageCommitting, events[6].Stage)
	assert.Equal(t, []string{"alpha-beta"}, events[7].Skills)
}

func TestInstalledSkills(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	for _, dir := range []string{"_config", "_core", "zeta-one", "alpha-two", "plain", "_hidden-dir"} {
		require.NoError(t, fs.MkdirAll(filepath.Join("/tree", dir), dirPerm))
	}
	writeFile(t, fs, "/tree/file-with-dash.md", "not a dir")

	skills, err := InstalledSkills(fs, "/tree")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha-two", "zeta-one"}, skills)
}
