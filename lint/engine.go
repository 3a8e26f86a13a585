// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

const (
	// DefaultMaxExpressionLength is the maximum allowed length for a rule expression.
	DefaultMaxExpressionLength = 4096

	// DefaultCostLimit is the default runtime cost limit for a rule evaluation.
	DefaultCostLimit = 100000
)

// Rule variable names available to every expression.
const (
	VarSkill       = "skill"
	VarBundle      = "bundle"
	VarFrontmatter = "frontmatter"
	VarBody        = "body"
)

// Engine compiles rule expressions against the skill lint environment.
// It is safe for concurrent use from multiple goroutines.
type Engine struct {
	once                sync.Once
	env                 *cel.Env
	envErr              error
	maxExpressionLength int
	costLimit           uint64
}

// NewEngine returns an engine declaring the skill, bundle, frontmatter and
// body variables.
func NewEngine() *Engine {
	return &Engine{
		maxExpressionLength: DefaultMaxExpressionLength,
		costLimit:           DefaultCostLimit,
	}
}

// WithCostLimit sets the runtime cost limit for rule evaluation.
func (e *Engine) WithCostLimit(limit uint64) *Engine {
	e.costLimit = limit
	return e
}

// WithMaxExpressionLength sets the maximum allowed length for rule expressions.
func (e *Engine) WithMaxExpressionLength(maxLen int) *Engine {
	e.maxExpressionLength = maxLen
	return e
}

func (e *Engine) getEnv() (*cel.Env, error) {
	e.once.Do(func() {
		e.env, e.envErr = cel.NewEnv(
			cel.Variable(VarSkill, cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable(VarBundle, cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable(VarFrontmatter, cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable(VarBody, cel.StringType),
		)
	})
	return e.env, e.envErr
}

// CompiledRule is a rule whose expression is ready for evaluation.
type CompiledRule struct {
	Rule
	program cel.Program
}

// Compile parses and type-checks r.Expr. The expression must yield a bool.
func (e *Engine) Compile(r Rule) (*CompiledRule, error) {
	ast, err := e.check(r)
	if err != nil {
		return nil, err
	}
	env, err := e.getEnv()
	if err != nil {
		return nil, err
	}
	program, err := env.Program(ast, cel.CostLimit(e.costLimit))
	if err != nil {
		return nil, fmt.Errorf("creating program for rule %q: %w", r.Name, err)
	}
	return &CompiledRule{Rule: r, program: program}, nil
}

// Check validates r.Expr without creating a program.
func (e *Engine) Check(r Rule) error {
	_, err := e.check(r)
	return err
}

func (e *Engine) check(r Rule) (*cel.Ast, error) {
	if len(r.Expr) > e.maxExpressionLength {
		return nil, fmt.Errorf("%w: rule %q expression length %d exceeds maximum of %d",
			ErrExpressionCheck, r.Name, len(r.Expr), e.maxExpressionLength)
	}

	env, err := e.getEnv()
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	parsed, issues := env.Parse(r.Expr)
	if issues.Err() != nil {
		return nil, newParseError(r.Name, r.Expr, issues)
	}
	checked, issues := env.Check(parsed)
	if issues.Err() != nil {
		return nil, newCheckError(r.Name, r.Expr, issues)
	}
	if !checked.OutputType().IsExactType(cel.BoolType) && !checked.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: rule %q must evaluate to bool, got %s",
			ErrExpressionCheck, r.Name, checked.OutputType())
	}
	return checked, nil
}

// Evaluate runs the rule against vars and reports whether it holds.
func (cr *CompiledRule) Evaluate(vars map[string]any) (bool, error) {
	out, _, err := cr.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("%w: rule %q: %s", ErrEvaluation, cr.Name, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("%w: rule %q: expected bool, got %T", ErrInvalidResult, cr.Name, out.Value())
	}
	return ok, nil
}
