// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config resolves the bmad-skills CLI configuration from flags,
// BMAD_* environment variables and an optional .bmad-skills.yaml file, and
// turns it into an install target and a bundle source.
package config
