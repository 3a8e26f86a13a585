// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/bacoco/BMad-Skills/env"
	"github.com/bacoco/BMad-Skills/env/mocks"
)

func TestOSReader_Getenv(t *testing.T) {
	testKey := "BMAD_TEST_ENV_VARIABLE_FOR_TESTING"
	t.Setenv(testKey, "test_value_123")

	reader := &env.OSReader{}

	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "existing environment variable", key: testKey, want: "test_value_123"},
		{name: "non-existing environment variable", key: "BMAD_NONEXISTENT_ENV_VAR_12345", want: ""},
		{name: "empty key", key: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reader.Getenv(tt.key))
		})
	}
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: false},
		{value: "1", want: true},
		{value: "0", want: false},
		{value: "true", want: true},
		{value: "TRUE", want: true},
		{value: "yes", want: true},
		{value: "On", want: true},
		{value: "false", want: false},
		{value: "maybe", want: false},
		{value: " 1 ", want: true},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			reader := mocks.NewMockReader(ctrl)
			reader.EXPECT().Getenv("DEBUG").Return(tt.value)

			assert.Equal(t, tt.want, env.Truthy(reader, "DEBUG"))
		})
	}
}

func TestFirstSet(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	gomock.InOrder(
		reader.EXPECT().Getenv("BMAD_DEBUG").Return(""),
		reader.EXPECT().Getenv("DEBUG").Return("1"),
	)

	assert.Equal(t, "1", env.FirstSet(reader, "BMAD_DEBUG", "DEBUG", "NEVER_READ"))
}

func TestFirstSet_NoneSet(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().Getenv(gomock.Any()).Return("").Times(2)

	assert.Empty(t, env.FirstSet(reader, "A", "B"))
}

// TestReader_InterfaceCompliance ensures OSReader implements the Reader interface
func TestReader_InterfaceCompliance(t *testing.T) {
	t.Parallel()
	var _ env.Reader = &env.OSReader{}
}
