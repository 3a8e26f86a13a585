// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package exitcode

import (
	"errors"
)

// Process exit codes used by the bmad-skills CLI.
const (
	OK                 = 0
	Failure            = 1
	Usage              = 2
	Integrity          = 3
	ManualIntervention = 4
	Lint               = 5
)

// CodedError wraps an error with a process exit code.
type CodedError struct {
	err  error
	code int
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *CodedError) Unwrap() error {
	return e.err
}

// ExitCode returns the exit code associated with this error.
func (e *CodedError) ExitCode() int {
	return e.code
}

// WithCode wraps an error with an exit code.
// If err is nil, WithCode returns nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code}
}

// Code extracts the exit code from an error.
// It unwraps the error chain looking for a CodedError; the outermost one wins.
// If no CodedError is found, it returns Failure.
func Code(err error) int {
	if err == nil {
		return OK
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.code
	}

	return Failure
}

// New creates a new error with the given message and exit code.
func New(message string, code int) error {
	return &CodedError{err: errors.New(message), code: code}
}
