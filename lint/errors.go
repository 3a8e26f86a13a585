// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

var (
	// ErrExpressionCheck is returned when a rule expression fails syntax or type checking.
	ErrExpressionCheck = errors.New("rule expression check failed")

	// ErrEvaluation is returned when evaluating a rule fails.
	ErrEvaluation = errors.New("rule evaluation failed")

	// ErrInvalidResult is returned when a rule yields a non-boolean value.
	ErrInvalidResult = errors.New("rule returned invalid result type")
)

// Location is one issue reported by the CEL parser or checker.
type Location struct {
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// ExpressionError describes a rule whose expression does not compile.
type ExpressionError struct {
	Rule      string
	Source    string
	Kind      string // "parse" or "check"
	Locations []Location
	original  error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("rule %q: CEL %s error in expression %q: %s", e.Rule, e.Kind, e.Source, e.original)
}

// Unwrap returns the underlying error.
func (e *ExpressionError) Unwrap() error {
	return e.original
}

func newExpressionError(kind, rule, source string, issues *cel.Issues) error {
	locs := make([]Location, 0, len(issues.Errors()))
	for _, err := range issues.Errors() {
		locs = append(locs, Location{
			Line: err.Location.Line(),
			Col:  err.Location.Column(),
			Msg:  err.Message,
		})
	}
	return &ExpressionError{
		Rule:      rule,
		Source:    source,
		Kind:      kind,
		Locations: locs,
		original:  fmt.Errorf("%w: %w", ErrExpressionCheck, issues.Err()),
	}
}

func newParseError(rule, source string, issues *cel.Issues) error {
	return newExpressionError("parse", rule, source, issues)
}

func newCheckError(rule, source string, issues *cel.Issues) error {
	return newExpressionError("check", rule, source, issues)
}
