// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=env.go -destination=mocks/mock_reader.go -package=mocks Reader

import (
	"os"
	"strconv"
	"strings"
)

// Reader defines an interface for environment variable access
type Reader interface {
	Getenv(key string) string
}

// OSReader implements Reader using the standard os package
type OSReader struct{}

// Getenv returns the value of the environment variable named by the key
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// Truthy reports whether the variable is set to a true value.
// "1", "true", "yes" and "on" are true, case-insensitively; anything else,
// including an unset variable, is false.
func Truthy(r Reader, key string) bool {
	v := strings.TrimSpace(r.Getenv(key))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// FirstSet returns the value of the first key that is set to a non-empty
// value, or "" when none is.
func FirstSet(r Reader, keys ...string) string {
	for _, k := range keys {
		if v := r.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
