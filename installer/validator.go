// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"

	"github.com/bacoco/BMad-Skills/logging"
	"github.com/bacoco/BMad-Skills/validation/skillid"
)

// ProblemCode classifies one integrity problem.
type ProblemCode string

const (
	ProblemManifestMissing ProblemCode = "manifest-missing"
	ProblemManifestInvalid ProblemCode = "manifest-invalid"
	ProblemDirMissing      ProblemCode = "dir-missing"
	ProblemSkillInvalidID  ProblemCode = "skill-invalid-id"
	ProblemSkillMissing    ProblemCode = "skill-missing"
	ProblemAssetsMissing   ProblemCode = "assets-missing"
)

// Problem is one violated structural invariant of a staged tree.
type Problem struct {
	Code    ProblemCode
	Skill   string
	Path    string
	Message string
}

// IntegrityError reports every problem found by one validation pass.
type IntegrityError struct {
	Problems []Problem
}

func (e *IntegrityError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Message)
	}
	if err := formatNumberedErrors("integrity check failed", msgs); err != nil {
		return err.Error()
	}
	return "integrity check failed"
}

// Skills returns the skill ids of all problems with the given code.
func (e *IntegrityError) Skills(code ProblemCode) []string {
	var ids []string
	for _, p := range e.Problems {
		if p.Code == code && p.Skill != "" {
			ids = append(ids, p.Skill)
		}
	}
	return ids
}

// Has reports whether any problem carries the given code.
func (e *IntegrityError) Has(code ProblemCode) bool {
	for _, p := range e.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}

// Validator checks the structural invariants of an installation tree.
type Validator struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewValidator creates a Validator reading from fs.
func NewValidator(fs afero.Fs, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Validator{fs: fs, logger: logger}
}

// Validate checks the tree at root and returns its manifest.
//
// A missing or malformed manifest stops validation immediately. Missing
// required directories, missing skills and missing assets directories are
// all collected and returned together as one *IntegrityError.
func (v *Validator) Validate(root string) (*Manifest, error) {
	manifestPath := ManifestPath(root)
	rel := filepath.Join(ConfigDir, ManifestFile)

	isFile, err := v.isFile(manifestPath)
	if err != nil {
		return nil, err
	}
	if !isFile {
		return nil, &IntegrityError{Problems: []Problem{{
			Code:    ProblemManifestMissing,
			Path:    rel,
			Message: fmt.Sprintf("%s not found in installation", rel),
		}}}
	}

	manifest, err := LoadManifest(v.fs, root)
	if err != nil {
		return nil, &IntegrityError{Problems: manifestProblems(rel, err)}
	}
	v.logger.Debug("manifest parsed", "version", manifest.Version, "skills", len(manifest.Skills))

	var problems []Problem
	for _, dir := range RequiredDirs {
		ok, err := afero.DirExists(v.fs, filepath.Join(root, dir))
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", dir, err)
		}
		if !ok {
			problems = append(problems, Problem{
				Code:    ProblemDirMissing,
				Path:    dir,
				Message: fmt.Sprintf("required directory missing: %s", dir),
			})
		}
	}

	var present []string
	for _, id := range manifest.SkillIDs() {
		if err := skillid.Validate(id); err != nil {
			problems = append(problems, Problem{
				Code:    ProblemSkillInvalidID,
				Skill:   id,
				Message: err.Error(),
			})
			continue
		}
		descriptor := filepath.Join(id, SkillDescriptor)
		ok, err := v.isFile(filepath.Join(root, descriptor))
		if err != nil {
			return nil, err
		}
		if !ok {
			problems = append(problems, Problem{
				Code:    ProblemSkillMissing,
				Skill:   id,
				Path:    descriptor,
				Message: fmt.Sprintf("missing skill %s: %s not found", id, descriptor),
			})
			continue
		}
		present = append(present, id)
	}

	for _, id := range present {
		assets := filepath.Join(id, AssetsDir)
		ok, err := afero.DirExists(v.fs, filepath.Join(root, assets))
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", assets, err)
		}
		if !ok {
			problems = append(problems, Problem{
				Code:    ProblemAssetsMissing,
				Skill:   id,
				Path:    assets,
				Message: fmt.Sprintf("skill %s missing %s/ directory", id, AssetsDir),
			})
		}
	}

	if len(problems) > 0 {
		return nil, &IntegrityError{Problems: problems}
	}
	v.logger.Debug("installation tree verified", "root", root, "skills", len(present))
	return manifest, nil
}

func (v *Validator) isFile(path string) (bool, error) {
	info, err := v.fs.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

func manifestProblems(rel string, err error) []Problem {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && len(schemaErr.Violations) > 0 {
		problems := make([]Problem, 0, len(schemaErr.Violations))
		for _, v := range schemaErr.Violations {
			problems = append(problems, Problem{
				Code:    ProblemManifestInvalid,
				Path:    rel,
				Message: fmt.Sprintf("%s: %s", ManifestFile, v),
			})
		}
		return problems
	}
	return []Problem{{
		Code:    ProblemManifestInvalid,
		Path:    rel,
		Message: err.Error(),
	}}
}
