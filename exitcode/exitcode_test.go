// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithCode(t *testing.T) {
	t.Parallel()

	t.Run("wraps error with code", func(t *testing.T) {
		t.Parallel()

		baseErr := errors.New("test error")
		err := WithCode(baseErr, Integrity)

		require.NotNil(t, err)

		coded, ok := err.(*CodedError)
		require.True(t, ok, "expected *CodedError, got %T", err)
		require.Equal(t, Integrity, coded.ExitCode())
		require.Equal(t, "test error", coded.Error())
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		t.Parallel()

		require.Nil(t, WithCode(nil, Integrity))
	})
}

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: OK},
		{name: "plain error", err: errors.New("boom"), want: Failure},
		{name: "coded error", err: WithCode(errors.New("bad"), Lint), want: Lint},
		{
			name: "wrapped coded error",
			err:  fmt.Errorf("outer: %w", WithCode(errors.New("inner"), ManualIntervention)),
			want: ManualIntervention,
		},
		{name: "constructed error", err: New("usage", Usage), want: Usage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestCodedError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := WithCode(sentinel, Integrity)

	require.ErrorIs(t, err, sentinel)

	var coded *CodedError
	require.ErrorAs(t, err, &coded)
	require.Equal(t, Integrity, coded.ExitCode())
}
