// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

// Stage is a state of the install state machine.
type Stage int

const (
	StageStaging Stage = iota + 1
	StageValidating
	StageBackingUp
	StageCommitting
	StageDone
	StageRollingBack
)

// TotalSteps is the number of numbered stages an install walks through.
const TotalSteps = 4

func (s Stage) String() string {
	switch s {
	case StageStaging:
		return "staging"
	case StageValidating:
		return "validating"
	case StageBackingUp:
		return "backing up"
	case StageCommitting:
		return "committing"
	case StageDone:
		return "done"
	case StageRollingBack:
		return "rolling back"
	default:
		return "unknown stage"
	}
}

// Step returns the 1-based position of s among the numbered stages, or 0.
func (s Stage) Step() int {
	if s >= StageStaging && s <= StageCommitting {
		return int(s)
	}
	return 0
}
