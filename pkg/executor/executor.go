package executor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/cellar/pkg/deps"
	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/fetch"
	"github.com/arthur-debert/cellar/pkg/formula"
	"github.com/arthur-debert/cellar/pkg/logging"
	"github.com/arthur-debert/cellar/pkg/paths"
	"github.com/arthur-debert/cellar/pkg/runner"
)

// Fetcher provides verified source trees
type Fetcher interface {
	Fetch(ctx context.Context, f *formula.Formula, head bool) (*fetch.Source, error)
	Cleanup(src *fetch.Source) error
}

// Resolver installs declared dependencies
type Resolver interface {
	Resolve(ctx context.Context, ds []formula.Dependency, enabled formula.OptionSet) ([]deps.Resolved, error)
	InstallCommand(dep formula.Dependency) runner.Command
}

// Observer is told about every step as it runs, for progress output
type Observer interface {
	StepStarted(step PlannedStep)
	StepFinished(result StepResult)
}

// Options contains configuration for the executor
type Options struct {
	Fs afero.Fs
	// Paths locates kegs: default prefixes, {{kegs}} and cellar dependencies
	Paths    paths.Paths
	Runner   runner.Runner
	Fetcher  Fetcher
	Resolver Resolver
	// ConfigureTool is the program whose first build step failure is
	// reported as CONFIGURE_FAILED
	ConfigureTool string
	Observer      Observer
	Logger        zerolog.Logger
	// Now is the clock used for receipts and durations
	Now func() time.Time
}

// Executor installs formulas
type Executor struct {
	fs            afero.Fs
	paths         paths.Paths
	runner        runner.Runner
	fetcher       Fetcher
	resolver      Resolver
	configureTool string
	observer      Observer
	logger        zerolog.Logger
	now           func() time.Time
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	p := opts.Paths
	if p == nil {
		p = defaultPaths()
	}
	tool := opts.ConfigureTool
	if tool == "" {
		tool = "cmake"
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Executor{
		fs:            fs,
		paths:         p,
		runner:        opts.Runner,
		fetcher:       opts.Fetcher,
		resolver:      opts.Resolver,
		configureTool: tool,
		observer:      observer,
		logger:        logger,
		now:           now,
	}
}

// StepResult is the outcome of one executed step
type StepResult struct {
	Step     PlannedStep   `json:"step"`
	Duration time.Duration `json:"duration"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    error         `json:"-"`
}

// Succeeded reports whether the step ran without error
func (r StepResult) Succeeded() bool {
	return r.Error == nil
}

// Result describes one install, complete or not
type Result struct {
	Plan         *Plan           `json:"plan"`
	Source       *fetch.Source   `json:"source,omitempty"`
	Dependencies []deps.Resolved `json:"dependencies,omitempty"`
	Steps        []StepResult    `json:"steps"`
	Receipt      string          `json:"receipt,omitempty"`
	DryRun       bool            `json:"dry_run,omitempty"`
	Duration     time.Duration   `json:"duration"`
}

// Install builds and installs f. The first failing step aborts the install
// and its error names the stage, the command and the exit status. The
// partial Result is returned alongside the error.
func (e *Executor) Install(ctx context.Context, f *formula.Formula, opts InstallOptions) (*Result, error) {
	start := e.now()
	if err := checkOptions(f, opts); err != nil {
		return nil, err
	}

	logger := e.logger.With().Str("formula", f.Name).Logger()
	done := logging.LogOperationStart(logger, "install")
	defer done()

	if opts.DryRun {
		return e.dryRun(f, opts, start)
	}

	result := &Result{}
	fetchStep := PlannedStep{Stage: StageFetch, Index: 1, Note: "fetch " + f.Name}
	e.observer.StepStarted(fetchStep)
	stepStart := e.now()
	src, err := e.fetcher.Fetch(ctx, f, opts.Head)
	e.finish(result, fetchStep, stepStart, err)
	if err != nil {
		return result, stageError(err, StageFetch)
	}
	result.Source = src

	plan, err := e.plan(f, opts, src.Tree)
	if err != nil {
		return result, err
	}
	result.Plan = plan
	result.Steps[0].Step = plan.Steps[0]

	depStep := PlannedStep{Stage: StageDependencies, Index: 1, Note: "install dependencies"}
	e.observer.StepStarted(depStep)
	stepStart = e.now()
	resolved, err := e.checkKegs(f.Dependencies, opts.Options)
	if err == nil {
		var installed []deps.Resolved
		installed, err = e.resolver.Resolve(ctx, f.Dependencies, opts.Options)
		resolved = append(resolved, installed...)
	}
	result.Dependencies = resolved
	e.finish(result, depStep, stepStart, err)
	if err != nil {
		return result, stageError(err, StageDependencies)
	}

	configureSeen := false
	var steps []PlannedStep
	for _, stage := range []Stage{StageBuild, StageTest, StageInstall, StagePostInstall} {
		steps = append(steps, plan.StepsFor(stage)...)
	}
	for _, step := range steps {
		e.observer.StepStarted(step)
		stepStart = e.now()
		err := e.runStep(ctx, step)
		e.finish(result, step, stepStart, err)
		if err == nil {
			if isConfigure(step, e.configureTool) {
				configureSeen = true
			}
			continue
		}

		code := stageCode(step.Stage)
		if step.Stage == StageBuild && !configureSeen && isConfigure(step, e.configureTool) {
			code = errors.ErrConfigureFailed
		}
		logger.Error().Err(err).Str("stage", string(step.Stage)).Int("step", step.Index).Msg("Install step failed")
		logger.Info().Str("tree", src.Tree).Msg("Source tree kept for inspection")
		return result, errors.Wrapf(err, code, "%s step %d failed: %s", step.Stage, step.Index, step).
			WithDetails(map[string]interface{}{
				errors.DetailStage: string(step.Stage),
				errors.DetailStep:  step.Index,
				errors.DetailTree:  src.Tree,
			})
	}

	receiptStep := PlannedStep{Stage: StageReceipt, Index: 1, Note: "write " + ReceiptFileName}
	e.observer.StepStarted(receiptStep)
	stepStart = e.now()
	receipt := newReceipt(f, opts, plan, src, e.now())
	path, err := writeReceipt(e.fs, plan.Prefix, receipt)
	e.finish(result, receiptStep, stepStart, err)
	if err != nil {
		return result, stageError(err, StageReceipt)
	}
	result.Receipt = path

	if !opts.KeepBuild {
		if err := e.fetcher.Cleanup(src); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove source tree")
		}
	}

	result.Duration = e.now().Sub(start)
	logger.Info().Str("prefix", plan.Prefix).Dur("duration", result.Duration).Msg("Install complete")
	return result, nil
}

func (e *Executor) dryRun(f *formula.Formula, opts InstallOptions, start time.Time) (*Result, error) {
	plan, err := e.plan(f, opts, SourcePlaceholder)
	if err != nil {
		return nil, err
	}
	result := &Result{Plan: plan, DryRun: true}
	for _, step := range plan.Steps {
		e.observer.StepStarted(step)
		e.logger.Info().Str("stage", string(step.Stage)).Str("step", step.String()).Msg("Would execute")
		sr := StepResult{Step: step, Skipped: true}
		result.Steps = append(result.Steps, sr)
		e.observer.StepFinished(sr)
	}
	result.Duration = e.now().Sub(start)
	return result, nil
}

// checkKegs confirms every enabled cellar-bound dependency has an installed
// keg. These are never installed on the fly.
func (e *Executor) checkKegs(ds []formula.Dependency, enabled formula.OptionSet) ([]deps.Resolved, error) {
	var resolved []deps.Resolved
	for _, d := range ds {
		if d.Binding != formula.BindingCellar {
			continue
		}
		if !deps.Enabled(d, enabled) {
			resolved = append(resolved, deps.Resolved{Dependency: d, Outcome: deps.OutcomeSkipped})
			continue
		}
		keg := e.paths.KegPath(d.Name, d.Version)
		receipt, err := ReadReceipt(e.fs, keg)
		if err == nil && receipt.Formula != d.Name {
			err = errors.Newf(errors.ErrFileAccess, "%s holds %s, not %s", keg, receipt.Formula, d.Name)
		}
		if err != nil {
			return resolved, errors.Wrapf(err, errors.ErrDependencyInstall, "%s %s is not installed, run: cellar install %s", d.Name, d.Version, d.Name).
				WithDetail(errors.DetailStep, d.Name).
				WithDetail(errors.DetailPath, keg)
		}
		e.logger.Debug().Str("dependency", d.Name).Str("keg", keg).Msg("Using installed keg")
		resolved = append(resolved, deps.Resolved{Dependency: d, Outcome: deps.OutcomePresent})
	}
	return resolved, nil
}

func (e *Executor) runStep(ctx context.Context, step PlannedStep) error {
	if step.Chmod != nil {
		return applyChmod(e.fs, step.Chmod)
	}
	if err := e.fs.MkdirAll(step.Command.Dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", step.Command.Dir)
	}
	return e.runner.Run(ctx, *step.Command)
}

func (e *Executor) finish(result *Result, step PlannedStep, started time.Time, err error) {
	sr := StepResult{Step: step, Duration: e.now().Sub(started), Error: err}
	result.Steps = append(result.Steps, sr)
	e.observer.StepFinished(sr)
}

func isConfigure(step PlannedStep, tool string) bool {
	return step.Stage == StageBuild && step.Command != nil && filepath.Base(step.Command.Program) == tool
}

func stageCode(stage Stage) errors.ErrorCode {
	switch stage {
	case StageBuild:
		return errors.ErrBuildFailed
	case StageTest:
		return errors.ErrTestFailed
	case StageInstall:
		return errors.ErrInstallFailed
	case StagePostInstall:
		return errors.ErrPostInstallFailed
	default:
		return errors.ErrInternal
	}
}

// stageError tags an already coded error with its stage, keeping the code
func stageError(err error, stage Stage) error {
	return errors.Wrapf(err, errors.GetErrorCode(err), "%s failed", stage).
		WithDetail(errors.DetailStage, string(stage))
}

func defaultPaths() paths.Paths {
	p, err := paths.New()
	if err != nil {
		return paths.NewWithRoot(paths.AppDirName)
	}
	return p
}

type nopObserver struct{}

func (nopObserver) StepStarted(PlannedStep) {}
func (nopObserver) StepFinished(StepResult) {}
