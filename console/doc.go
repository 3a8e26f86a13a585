// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package console renders install progress, lint reports and backup
// listings for a terminal. Printer implements installer.Reporter; colors
// are disabled when the output is not a terminal or WithColor(false) is
// given.
package console
