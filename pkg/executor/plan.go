package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/arthur-debert/cellar/pkg/deps"
	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/formula"
	"github.com/arthur-debert/cellar/pkg/runner"
)

// Stage is one phase of an install
type Stage string

const (
	StageFetch        Stage = "fetch"
	StageDependencies Stage = "dependencies"
	StageBuild        Stage = "build"
	StageTest         Stage = "test"
	StageInstall      Stage = "install"
	StagePostInstall  Stage = "post_install"
	StageReceipt      Stage = "receipt"
)

// SourcePlaceholder stands in for the source tree before it is fetched
const SourcePlaceholder = "<source>"

// InstallOptions are the per-install choices
type InstallOptions struct {
	// Prefix is the install root. Empty means the keg <kegs>/<name>/<version>.
	Prefix string
	// Options are the enabled option toggles, for example with-test
	Options formula.OptionSet
	// Head builds from the VCS locator instead of the pinned archive
	Head bool
	// DryRun logs the planned commands without fetching or running anything
	DryRun bool
	// KeepBuild keeps the scratch source tree after a successful install
	KeepBuild bool
	// Jobs is substituted for {{jobs}}; zero or less means the CPU count
	Jobs int
	// Python is substituted for {{python}}
	Python string
}

// ChmodAction sets Mode on absolute Paths
type ChmodAction struct {
	Mode  os.FileMode `json:"mode"`
	Paths []string    `json:"paths"`
}

// PlannedStep is one unit of work in an install
type PlannedStep struct {
	Stage Stage `json:"stage"`
	// Index is 1-based within the stage
	Index   int             `json:"index"`
	Command *runner.Command `json:"command,omitempty"`
	Chmod   *ChmodAction    `json:"chmod,omitempty"`
	// Note describes steps that are not commands, such as the fetch
	Note string `json:"note,omitempty"`
}

// String renders the step for plans and progress output
func (s PlannedStep) String() string {
	switch {
	case s.Command != nil:
		return s.Command.String()
	case s.Chmod != nil:
		return fmt.Sprintf("chmod %04o %s", octal(s.Chmod.Mode), strings.Join(s.Chmod.Paths, " "))
	default:
		return s.Note
	}
}

// Plan is the ordered list of steps an install would perform
type Plan struct {
	Formula string        `json:"formula"`
	Version string        `json:"version"`
	Prefix  string        `json:"prefix"`
	Source  string        `json:"source"`
	Head    bool          `json:"head"`
	Options []string      `json:"options,omitempty"`
	Steps   []PlannedStep `json:"steps"`
}

// StepsFor returns the planned steps of one stage
func (p *Plan) StepsFor(stage Stage) []PlannedStep {
	var out []PlannedStep
	for _, s := range p.Steps {
		if s.Stage == stage {
			out = append(out, s)
		}
	}
	return out
}

// Plan returns the steps Install would run, with the source tree shown as
// SourcePlaceholder
func (e *Executor) Plan(f *formula.Formula, opts InstallOptions) (*Plan, error) {
	if err := checkOptions(f, opts); err != nil {
		return nil, err
	}
	return e.plan(f, opts, SourcePlaceholder)
}

func (e *Executor) plan(f *formula.Formula, opts InstallOptions, tree string) (*Plan, error) {
	version := installVersion(f, opts.Head)
	prefix := e.resolvePrefix(f, opts)
	vars := formula.Vars{
		formula.VarPrefix:  prefix,
		formula.VarPython:  pythonOrDefault(opts.Python),
		formula.VarJobs:    strconv.Itoa(jobsOrDefault(opts.Jobs)),
		formula.VarSource:  tree,
		formula.VarVersion: version,
		formula.VarName:    f.Name,
		formula.VarKegs:    e.paths.KegsRoot(),
	}
	for _, d := range f.Dependencies {
		if d.Binding == formula.BindingCellar {
			vars[formula.PrefixVar(d.Name)] = e.paths.KegPath(d.Name, d.Version)
		}
	}

	p := &Plan{
		Formula: f.Name,
		Version: version,
		Prefix:  prefix,
		Head:    opts.Head,
		Options: opts.Options.Sorted(),
	}

	if opts.Head {
		p.Source = f.Head.URL
		p.Steps = append(p.Steps, PlannedStep{Stage: StageFetch, Index: 1, Note: "clone " + f.Head.URL})
	} else {
		p.Source = f.URL
		note := "download " + f.URL
		if f.SHA256 != "" {
			note += " (sha256 " + f.SHA256 + ")"
		}
		p.Steps = append(p.Steps, PlannedStep{Stage: StageFetch, Index: 1, Note: note})
	}

	idx := 0
	for _, d := range f.Dependencies {
		if !deps.Enabled(d, opts.Options) {
			continue
		}
		idx++
		if d.Binding == formula.BindingCellar {
			note := fmt.Sprintf("use %s %s keg %s", d.Name, d.Version, e.paths.KegPath(d.Name, d.Version))
			p.Steps = append(p.Steps, PlannedStep{Stage: StageDependencies, Index: idx, Note: note})
			continue
		}
		cmd := e.resolver.InstallCommand(d)
		p.Steps = append(p.Steps, PlannedStep{Stage: StageDependencies, Index: idx, Command: &cmd})
	}

	stages := []struct {
		stage Stage
		steps []formula.Step
	}{
		{StageBuild, f.Build},
		{StageTest, f.Test},
		{StageInstall, f.Install},
	}
	for _, st := range stages {
		if st.stage == StageTest && !opts.Options.Has(formula.TestOption) {
			continue
		}
		idx := 0
		for _, step := range st.steps {
			if !step.Active(opts.Options) {
				continue
			}
			cmd, err := expandStep(step, opts.Options, vars, tree)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFormulaInvalid, "%s step %d of %s", st.stage, idx+1, f.Name)
			}
			idx++
			p.Steps = append(p.Steps, PlannedStep{Stage: st.stage, Index: idx, Command: cmd})
		}
	}

	idx = 0
	for _, action := range f.PostInstall {
		if action.IsChmod() {
			mode, err := formula.ParseMode(action.Chmod)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFormulaInvalid, "post_install of %s", f.Name)
			}
			targets := make([]string, len(action.Paths))
			for i, rel := range action.Paths {
				targets[i] = filepath.Join(prefix, filepath.FromSlash(rel))
			}
			idx++
			p.Steps = append(p.Steps, PlannedStep{
				Stage: StagePostInstall,
				Index: idx,
				Chmod: &ChmodAction{Mode: fileMode(mode), Paths: targets},
			})
			continue
		}
		if !action.Run.Active(opts.Options) {
			continue
		}
		cmd, err := expandStep(*action.Run, opts.Options, vars, prefix)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFormulaInvalid, "post_install step %d of %s", idx+1, f.Name)
		}
		idx++
		p.Steps = append(p.Steps, PlannedStep{Stage: StagePostInstall, Index: idx, Command: cmd})
	}

	return p, nil
}

// expandStep resolves placeholders and option-gated arguments. Relative
// dirs are taken from base.
func expandStep(step formula.Step, enabled formula.OptionSet, vars formula.Vars, base string) (*runner.Command, error) {
	program, err := vars.Expand(step.Program)
	if err != nil {
		return nil, err
	}
	args, err := vars.ExpandAll(step.ResolvedArgs(enabled))
	if err != nil {
		return nil, err
	}
	env, err := vars.ExpandEnv(step.Env)
	if err != nil {
		return nil, err
	}
	dir, err := vars.Expand(step.Dir)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, filepath.FromSlash(dir))
	}
	return &runner.Command{Program: program, Args: args, Dir: dir, Env: env}, nil
}

// checkOptions rejects toggles the formula does not declare
func checkOptions(f *formula.Formula, opts InstallOptions) error {
	for _, name := range opts.Options.Sorted() {
		if !f.HasOption(name) {
			return errors.Newf(errors.ErrInvalidInput, "%s has no option %q (available: %s)",
				f.Name, name, strings.Join(f.OptionNames(), ", "))
		}
	}
	if opts.Head && !f.HasHead() {
		return errors.Newf(errors.ErrInvalidInput, "%s declares no head source", f.Name)
	}
	if !opts.Head && !f.HasStableSource() {
		return errors.Newf(errors.ErrInvalidInput, "%s has no stable source, use --HEAD", f.Name)
	}
	return nil
}

func installVersion(f *formula.Formula, head bool) string {
	if head || f.Version == "" {
		return "HEAD"
	}
	return f.Version
}

func (e *Executor) resolvePrefix(f *formula.Formula, opts InstallOptions) string {
	if opts.Prefix != "" {
		return opts.Prefix
	}
	return e.paths.KegPath(f.Name, installVersion(f, opts.Head))
}

func pythonOrDefault(python string) string {
	if python == "" {
		return "python3"
	}
	return python
}

func jobsOrDefault(jobs int) int {
	if jobs <= 0 {
		return runtime.NumCPU()
	}
	return jobs
}

func fileMode(mode uint32) os.FileMode {
	m := os.FileMode(mode & 0o777)
	if mode&0o4000 != 0 {
		m |= os.ModeSetuid
	}
	if mode&0o2000 != 0 {
		m |= os.ModeSetgid
	}
	if mode&0o1000 != 0 {
		m |= os.ModeSticky
	}
	return m
}

func octal(m os.FileMode) uint32 {
	mode := uint32(m.Perm())
	if m&os.ModeSetuid != 0 {
		mode |= 0o4000
	}
	if m&os.ModeSetgid != 0 {
		mode |= 0o2000
	}
	if m&os.ModeSticky != 0 {
		mode |= 0o1000
	}
	return mode
}
