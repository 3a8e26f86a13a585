// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package exitcode provides error types that carry a process exit code.

Errors created deep in the install pipeline carry the exit code the CLI should
terminate with, so main only has to call [Code] once. The CodedError type
implements the standard error interface and supports errors.Is() and
errors.As().

# Basic Usage

	err := exitcode.WithCode(installErr, exitcode.Integrity)

	os.Exit(exitcode.Code(err))
	// Returns the code if err contains a CodedError
	// Returns Failure (1) if no CodedError is found
	// Returns OK (0) if err is nil

# Codes

  - OK (0): success
  - Failure (1): any unclassified error
  - Usage (2): invalid flags or arguments
  - Integrity (3): the staged bundle failed integrity validation
  - ManualIntervention (4): rollback failed; a backup must be restored by hand
  - Lint (5): publish-time lint checks failed
*/
package exitcode
