// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package logging provides the [log/slog.Logger] factory used by the
bmad-skills installer.

User-facing progress goes through the console reporter; this logger
carries the structured diagnostic stream (stage transitions, paths,
errors) and is quiet unless --debug or a lower level is requested.

# Defaults

  - Format: text ([FormatText])
  - Level: WARN ([log/slog.LevelWarn])
  - Output: [os.Stderr]
  - Timestamps: [time.RFC3339]
  - An "error" attribute is written as "err"

# Usage

	logger := logging.New(
		logging.WithFormat(logging.FormatJSON),
		logging.WithLevel(slog.LevelDebug),
	)
	logger.Debug("staging", "temp", tempDir)

Tests that do not inspect log output use [NewNop].
*/
package logging
