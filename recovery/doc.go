// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package recovery converts panics raised inside a unit of work into ordinary
// errors.
//
// The installer runs every stage of an installation attempt through [Do], so a
// panic in staging, validation, backup or commit is funnelled through the same
// rollback path as a returned error instead of unwinding past it and leaving
// the target half-replaced.
//
// # Basic Usage
//
//	err := recovery.Do(func() error {
//		return stage()
//	})
//	var pe *recovery.PanicError
//	if errors.As(err, &pe) {
//		log.Printf("stage panicked: %v\n%s", pe.Value, pe.Stack)
//	}
//
// # Stability
//
// This package is Beta stability. The API may have minor changes before
// reaching stable status in v1.0.0.
package recovery
