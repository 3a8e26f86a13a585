// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"errors"
	"fmt"
)

// ErrManualIntervention matches errors where rollback itself failed and
// the previous installation only survives as a backup directory.
var ErrManualIntervention = errors.New("manual intervention required")

// StageError is returned when an install attempt failed and was rolled
// back. It unwraps to the original cause.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// RollbackError is returned when restoring the previous installation
// failed. BackupPath is never deleted and holds the previous tree.
type RollbackError struct {
	BackupPath string
	// Cause is the failure that triggered the rollback.
	Cause error
	// Err is the failure of the rollback itself.
	Err error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%v; rollback failed: %v; %s, backup at: %s",
		e.Cause, e.Err, ErrManualIntervention, e.BackupPath)
}

func (e *RollbackError) Unwrap() []error {
	return []error{e.Cause, e.Err}
}

// Is reports whether target is ErrManualIntervention.
func (*RollbackError) Is(target error) bool {
	return target == ErrManualIntervention
}

// SurvivingBackup returns the backup path kept after a failed rollback.
func SurvivingBackup(err error) (string, bool) {
	var rbErr *RollbackError
	if errors.As(err, &rbErr) && rbErr.BackupPath != "" {
		return rbErr.BackupPath, true
	}
	return "", false
}

// FailedStage returns the stage an install error originated in.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return 0, false
}
