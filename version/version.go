// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package version provides build-time version information for bmad-skills.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build-time variables set via ldflags.
// Example: go build -ldflags="-X github.com/bacoco/BMad-Skills/version.Version=2.1.8"
var (
	// Version is the semantic version of the bundle and CLI.
	Version = "0.0.0-dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildDate is the RFC3339 timestamp of the build.
	BuildDate = "unknown"
)

// Short returns the version with a leading "v" (e.g. "v2.1.8").
func Short() string {
	return "v" + strings.TrimPrefix(Version, "v")
}

// Info returns a single-line version string with commit and build info.
func Info() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("bmad-skills %s (commit: %s, built: %s, go: %s)",
		Short(), commit, BuildDate, runtime.Version())
}

// Full returns a multi-line verbose version output.
func Full() string {
	return fmt.Sprintf(`bmad-skills %s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s/%s`,
		Short(), Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
