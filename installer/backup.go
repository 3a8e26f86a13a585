// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/bacoco/BMad-Skills/logging"
)

// ErrNoTarget is returned by Backup when there is nothing to back up.
var ErrNoTarget = errors.New("target does not exist")

// maxBackupSuffix bounds the -N counter tried when backup names collide.
const maxBackupSuffix = 1000

// Backup is a previous installation renamed aside.
type Backup struct {
	Path string
	Time time.Time
}

// BackupManager renames installations aside and back.
// Backups are never deleted by this package.
type BackupManager struct {
	fs     afero.Fs
	now    func() time.Time
	logger *slog.Logger
}

// NewBackupManager creates a BackupManager. A nil now uses time.Now and a
// nil logger discards output.
func NewBackupManager(fs afero.Fs, now func() time.Time, logger *slog.Logger) *BackupManager {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BackupManager{fs: fs, now: now, logger: logger}
}

// BackupPath returns the backup name for target at time t.
func BackupPath(target string, t time.Time) string {
	return target + BackupInfix + t.UTC().Format(BackupTimeLayout)
}

// Backup renames target to a timestamped sibling and returns its path.
// When the second-granularity name is already taken a -N counter is
// appended rather than overwriting the older backup.
func (m *BackupManager) Backup(target string) (string, error) {
	exists, err := afero.Exists(m.fs, target)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", target, err)
	}
	if !exists {
		return "", fmt.Errorf("backing up %s: %w", target, ErrNoTarget)
	}

	path, err := m.freePath(BackupPath(target, m.now()))
	if err != nil {
		return "", err
	}

	m.logger.Debug("renaming", "src", target, "dst", path)
	if err := m.fs.Rename(target, path); err != nil {
		return "", fmt.Errorf("backing up %s to %s: %w", target, path, err)
	}
	return path, nil
}

func (m *BackupManager) freePath(base string) (string, error) {
	candidate := base
	for n := 1; n <= maxBackupSuffix; n++ {
		taken, err := afero.Exists(m.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
	return "", fmt.Errorf("no free backup name for %s after %d attempts", base, maxBackupSuffix)
}

// Restore moves backup back to target, first removing whatever exists
// at target. A failed restore leaves backup in place.
func (m *BackupManager) Restore(backup, target string) error {
	ok, err := afero.Exists(m.fs, backup)
	if err != nil {
		return fmt.Errorf("checking %s: %w", backup, err)
	}
	if !ok {
		return fmt.Errorf("restoring %s: backup not found", backup)
	}

	exists, err := afero.Exists(m.fs, target)
	if err != nil {
		return fmt.Errorf("checking %s: %w", target, err)
	}
	if exists {
		m.logger.Debug("removing", "path", target)
		if err := m.fs.RemoveAll(target); err != nil {
			return fmt.Errorf("removing failed installation %s: %w", target, err)
		}
	}

	m.logger.Debug("renaming", "src", backup, "dst", target)
	if err := m.fs.Rename(backup, target); err != nil {
		return fmt.Errorf("restoring %s to %s: %w", backup, target, err)
	}
	return nil
}

// List returns the backups of target, newest first.
func (m *BackupManager) List(target string) ([]Backup, error) {
	parent := filepath.Dir(target)
	prefix := filepath.Base(target) + BackupInfix

	entries, err := afero.ReadDir(m.fs, parent)
	if err != nil {
		if ok, _ := afero.DirExists(m.fs, parent); !ok {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", parent, err)
	}

	var backups []Backup
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		t, ok := parseBackupTime(strings.TrimPrefix(name, prefix))
		if !ok {
			continue
		}
		backups = append(backups, Backup{Path: filepath.Join(parent, name), Time: t})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Time.Equal(backups[j].Time) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Time.After(backups[j].Time)
	})
	return backups, nil
}

func parseBackupTime(suffix string) (time.Time, bool) {
	if len(suffix) < len(BackupTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(BackupTimeLayout, suffix[:len(BackupTimeLayout)])
	if err != nil {
		return time.Time{}, false
	}
	rest := suffix[len(BackupTimeLayout):]
	if rest != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "-"))
		if !strings.HasPrefix(rest, "-") || err != nil || n < 1 {
			return time.Time{}, false
		}
	}
	return t, true
}
