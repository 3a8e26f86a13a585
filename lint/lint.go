// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package lint

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/bacoco/BMad-Skills/bundle"
	"github.com/bacoco/BMad-Skills/installer"
	"github.com/bacoco/BMad-Skills/validation/skillid"
)

// Check names.
const (
	CheckRequiredFiles  = "required-files"
	CheckSkillStructure = "skill-structure"
	CheckManifestRules  = "manifest-rules"
	CheckTemplateAssets = "template-assets"
)

// DefaultBundleDir is the bundle location relative to the repository root.
const DefaultBundleDir = ".claude/skills"

// SkillFiles are the entries every skill directory must carry before publication.
var SkillFiles = []string{"SKILL.md", "REFERENCE.md", "WORKFLOW.md", "CHECKLIST.md", "assets", "scripts"}

// ErrFailed is returned by Report.Err when at least one check failed.
var ErrFailed = errors.New("bundle lint failed")

// Options configures Run.
type Options struct {
	// Root is the repository root.
	Root string
	// BundleDir is the bundle directory relative to Root (default .claude/skills).
	BundleDir string
	// RequiredFiles are Root-relative paths that must exist. Defaults to
	// the bundle manifest, the style guide, README.md and LICENSE.
	RequiredFiles []string
	// PackageVersion is the published version every skill must carry.
	// Defaults to the manifest version.
	PackageVersion string
	// Rules are evaluated in addition to DefaultRules.
	Rules  []Rule
	Fs     afero.Fs
	Logger *slog.Logger
}

// Finding is one problem reported by a check.
type Finding struct {
	Skill   string `json:"skill,omitempty"`
	Path    string `json:"path,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	switch {
	case f.Skill != "" && f.Rule != "":
		return fmt.Sprintf("%s: %s (%s)", f.Skill, f.Message, f.Rule)
	case f.Skill != "":
		return fmt.Sprintf("%s: %s", f.Skill, f.Message)
	case f.Path != "":
		return fmt.Sprintf("%s: %s", f.Path, f.Message)
	default:
		return f.Message
	}
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name     string    `json:"name"`
	Findings []Finding `json:"findings,omitempty"`
	Notes    []string  `json:"notes,omitempty"`
}

// Passed reports whether the check produced no findings.
func (c CheckResult) Passed() bool {
	return len(c.Findings) == 0
}

// Report collects the results of every check in run order.
type Report struct {
	Checks []CheckResult `json:"checks"`
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed() {
			return false
		}
	}
	return true
}

// Check returns the named result, if it ran.
func (r *Report) Check(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Err returns nil when every check passed, otherwise an error wrapping
// ErrFailed that names the failed checks.
func (r *Report) Err() error {
	var failed []string
	for _, c := range r.Checks {
		if !c.Passed() {
			failed = append(failed, c.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(failed, ", "))
}

type linter struct {
	fs        afero.Fs
	logger    *slog.Logger
	root      string
	bundleDir string
	opts      Options
	skills    []string
}

// Run executes every check against the repository at opts.Root. An error
// is returned only when the checks cannot run at all, such as an invalid
// rule or a missing bundle directory.
func Run(opts Options) (*Report, error) {
	l := &linter{fs: opts.Fs, logger: opts.Logger, root: opts.Root, opts: opts}
	if l.fs == nil {
		l.fs = afero.NewOsFs()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	rel := opts.BundleDir
	if rel == "" {
		rel = DefaultBundleDir
	}
	l.bundleDir = filepath.Join(l.root, filepath.FromSlash(rel))

	rules, err := compileRules(append(DefaultRules(), opts.Rules...))
	if err != nil {
		return nil, err
	}

	skills, err := l.listSkills()
	if err != nil {
		return nil, err
	}
	l.skills = skills

	required := opts.RequiredFiles
	if required == nil {
		required = DefaultRequiredFiles(rel)
	}

	report := &Report{}
	report.Checks = append(report.Checks,
		l.requiredFiles(required),
		l.skillStructure(),
		l.manifestRules(rules),
		l.templateAssets(),
	)
	for _, c := range report.Checks {
		l.logger.Debug("lint check finished", "check", c.Name, "findings", len(c.Findings))
	}
	return report, nil
}

// DefaultRequiredFiles returns the files a publishable repository must carry.
func DefaultRequiredFiles(bundleDir string) []string {
	return []string{
		path.Join(bundleDir, installer.ConfigDir, installer.ManifestFile),
		path.Join(bundleDir, installer.ConfigDir, "STYLE-GUIDE.md"),
		"README.md",
		"LICENSE",
	}
}

func compileRules(rules []Rule) ([]*CompiledRule, error) {
	engine := NewEngine()
	compiled := make([]*CompiledRule, 0, len(rules))
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: rule with expression %q has no name", ErrExpressionCheck, r.Expr)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate rule name %q", ErrExpressionCheck, r.Name)
		}
		seen[r.Name] = struct{}{}

		cr, err := engine.Compile(r)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

func (l *linter) listSkills() ([]string, error) {
	entries, err := afero.ReadDir(l.fs, l.bundleDir)
	if err != nil {
		return nil, fmt.Errorf("reading bundle directory: %w", err)
	}
	var skills []string
	for _, e := range entries {
		if e.IsDir() && skillid.IsSkillDir(e.Name()) {
			skills = append(skills, e.Name())
		}
	}
	sort.Strings(skills)
	return skills, nil
}

func (l *linter) exists(p string) bool {
	_, err := l.fs.Stat(p)
	return err == nil
}

func (l *linter) requiredFiles(required []string) CheckResult {
	res := CheckResult{Name: CheckRequiredFiles}
	for _, rel := range required {
		if l.exists(filepath.Join(l.root, filepath.FromSlash(rel))) {
			continue
		}
		res.Findings = append(res.Findings, Finding{Path: rel, Message: "required file missing"})
	}
	if res.Passed() {
		res.Notes = append(res.Notes, fmt.Sprintf("all %d required files present", len(required)))
	}
	return res
}

func (l *linter) skillStructure() CheckResult {
	res := CheckResult{Name: CheckSkillStructure}
	res.Notes = append(res.Notes, fmt.Sprintf("found %d skills", len(l.skills)))
	for _, skill := range l.skills {
		var missing []string
		for _, name := range SkillFiles {
			if !l.exists(filepath.Join(l.bundleDir, skill, name)) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			res.Findings = append(res.Findings, Finding{
				Skill:   skill,
				Message: "missing " + strings.Join(missing, ", "),
			})
		}
	}
	return res
}

func (l *linter) manifestRules(rules []*CompiledRule) CheckResult {
	res := CheckResult{Name: CheckManifestRules}

	manifest, err := installer.LoadManifest(l.fs, l.bundleDir)
	if err != nil {
		res.Findings = append(res.Findings, Finding{
			Path:    path.Join(installer.ConfigDir, installer.ManifestFile),
			Message: err.Error(),
		})
		return res
	}

	versions := map[string]struct{}{}
	for _, ref := range manifest.Skills {
		versions[ref.Version] = struct{}{}

		skillMD := filepath.Join(l.bundleDir, ref.ID, installer.SkillDescriptor)
		content, err := afero.ReadFile(l.fs, skillMD)
		if err != nil {
			res.Findings = append(res.Findings, Finding{Skill: ref.ID, Message: "reading SKILL.md: " + pathErrMessage(err)})
			continue
		}
		doc, err := bundle.ParseSkillDoc(content)
		if err != nil {
			res.Findings = append(res.Findings, Finding{Skill: ref.ID, Message: err.Error()})
			continue
		}

		vars := ruleVars(manifest, l.opts.PackageVersion, ref, doc)
		for _, r := range rules {
			ok, err := r.Evaluate(vars)
			switch {
			case err != nil:
				res.Findings = append(res.Findings, Finding{Skill: ref.ID, Rule: r.Name, Message: err.Error()})
			case !ok:
				res.Findings = append(res.Findings, Finding{Skill: ref.ID, Rule: r.Name, Message: r.Message})
			}
		}
	}

	if res.Passed() {
		res.Notes = append(res.Notes, fmt.Sprintf("%d skills consistent with MANIFEST.json", len(manifest.Skills)))
	} else if len(versions) > 1 {
		list := make([]string, 0, len(versions))
		for v := range versions {
			list = append(list, v)
		}
		sort.Strings(list)
		res.Notes = append(res.Notes, "skill versions: "+strings.Join(list, ", "))
	}
	return res
}

func pathErrMessage(err error) string {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

var (
	assetRefPattern    = regexp.MustCompile(`ASSET(?:_DIR|S_DIR)\s*/\s*["']([^"']+\.(?:template|jinja))["']`)
	templateMapPattern = regexp.MustCompile(`(?s)TEMPLATE_MAP\s*=\s*\{[^}]+\}`)
	quotedNamePattern  = regexp.MustCompile(`["']([^"']+\.(?:template|jinja))["']`)
)

// TemplateRefs returns the template names a Python script expects to find
// in its skill's assets directory, sorted and deduplicated.
func TemplateRefs(script string) []string {
	set := map[string]struct{}{}
	for _, m := range assetRefPattern.FindAllStringSubmatch(script, -1) {
		set[m[1]] = struct{}{}
	}
	if block := templateMapPattern.FindString(script); block != "" {
		for _, m := range quotedNamePattern.FindAllStringSubmatch(block, -1) {
			set[m[1]] = struct{}{}
		}
	}
	refs := make([]string, 0, len(set))
	for name := range set {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

func (l *linter) templateAssets() CheckResult {
	res := CheckResult{Name: CheckTemplateAssets}

	found := 0
	for _, skill := range l.skills {
		scripts, err := afero.ReadDir(l.fs, filepath.Join(l.bundleDir, skill, "scripts"))
		if err != nil {
			continue
		}
		for _, s := range scripts {
			if s.IsDir() || !strings.HasSuffix(s.Name(), ".py") {
				continue
			}
			content, err := afero.ReadFile(l.fs, filepath.Join(l.bundleDir, skill, "scripts", s.Name()))
			if err != nil {
				res.Findings = append(res.Findings, Finding{Skill: skill, Message: fmt.Sprintf("reading scripts/%s: %s", s.Name(), pathErrMessage(err))})
				continue
			}
			for _, tmpl := range TemplateRefs(string(content)) {
				if l.exists(filepath.Join(l.bundleDir, skill, installer.AssetsDir, filepath.FromSlash(tmpl))) {
					found++
					continue
				}
				res.Findings = append(res.Findings, Finding{
					Skill:   skill,
					Path:    "scripts/" + s.Name(),
					Message: fmt.Sprintf("scripts/%s expects: %s", s.Name(), tmpl),
				})
			}
		}
	}

	var templates int
	err := afero.Walk(l.fs, l.bundleDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch {
		case strings.HasSuffix(info.Name(), ".jinja"):
			rel, _ := filepath.Rel(l.bundleDir, p)
			res.Findings = append(res.Findings, Finding{
				Path:    filepath.ToSlash(rel),
				Message: ".jinja template should be renamed to .template",
			})
		case strings.HasSuffix(info.Name(), ".template"):
			templates++
		}
		return nil
	})
	if err != nil {
		res.Findings = append(res.Findings, Finding{Message: "walking bundle: " + err.Error()})
	}

	res.Notes = append(res.Notes,
		fmt.Sprintf("%d script-referenced templates exist", found),
		fmt.Sprintf("%d .template files in bundle", templates),
	)
	return res
}
