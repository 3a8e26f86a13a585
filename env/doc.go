// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, enabling dependency injection and testing isolation.

The CLI reads HOME, DEBUG and NO_COLOR through a [Reader] so target resolution
and output decisions can be tested without touching the process environment.

# Basic Usage

	reader := &env.OSReader{}
	home := reader.Getenv("HOME")
	debug := env.Truthy(reader, "DEBUG")

# Testing

A generated mock is available in the mocks sub-package:

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockReader(ctrl)
	mock.EXPECT().Getenv("HOME").Return("/home/test")
*/
package env
