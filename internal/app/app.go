// Package app wires configuration, paths and the cellar packages together
// for the command line.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/cellar/pkg/config"
	"github.com/arthur-debert/cellar/pkg/deps"
	"github.com/arthur-debert/cellar/pkg/display"
	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/executor"
	"github.com/arthur-debert/cellar/pkg/fetch"
	"github.com/arthur-debert/cellar/pkg/formula"
	"github.com/arthur-debert/cellar/pkg/logging"
	"github.com/arthur-debert/cellar/pkg/paths"
	"github.com/arthur-debert/cellar/pkg/runner"
)

// Globals are the flags shared by every command
type Globals struct {
	Verbosity  int
	ConfigFile string
	Output     string
}

// App holds what commands need once the global flags are parsed
type App struct {
	Globals Globals
	Stdout  io.Writer
	Stderr  io.Writer
	Fs      afero.Fs

	// Paths and LoadConfig can be replaced before Init, mostly for tests
	Paths      paths.Paths
	LoadConfig func(config.LoadOptions) (*config.Config, error)
	// NewRunner builds the process runner for real installs
	NewRunner func(stdout, stderr io.Writer) runner.Runner

	cfg      *config.Config
	renderer *display.Renderer
	styles   *display.Styles
	color    bool
	logger   zerolog.Logger
}

// New returns an App writing to the process streams
func New() *App {
	return &App{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Fs:         afero.NewOsFs(),
		LoadConfig: config.Load,
		NewRunner: func(stdout, stderr io.Writer) runner.Runner {
			return runner.NewExecRunner(stdout, stderr)
		},
	}
}

// Init resolves paths, loads configuration and sets up output
func (a *App) Init() error {
	a.logger = logging.GetLogger("app")

	if a.Paths == nil {
		p, err := paths.New()
		if err != nil {
			return err
		}
		a.Paths = p
	}

	overrides := map[string]interface{}{}
	if a.Globals.Output != "" {
		overrides["output.format"] = a.Globals.Output
	}
	cfg, err := a.LoadConfig(config.LoadOptions{
		ConfigFile: a.Globals.ConfigFile,
		Paths:      a.Paths,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.styles = display.DefaultStyles()
	if cfg.Output.Styles != "" {
		styles, err := display.LoadStyles(cfg.Output.Styles)
		if err != nil {
			return errors.Wrap(err, errors.ErrConfigLoad, "failed to load styles").
				WithDetail(errors.DetailPath, cfg.Output.Styles)
		}
		a.styles = styles
	}

	out, _ := a.Stdout.(*os.File)
	a.color = cfg.Output.Color == config.ColorAlways ||
		(out != nil && display.ColorEnabled(cfg.Output.Color, out))
	display.ConfigureColor(a.color)

	format, err := display.ParseFormat(cfg.Output.Format)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid output format")
	}
	a.renderer = display.NewRenderer(a.Stdout, format, a.styles, a.color)
	a.renderer.SetLogFile(logging.LogFilePath())

	a.logger.Debug().
		Str("config_dir", a.Paths.ConfigDir()).
		Str("cache_dir", a.Paths.CacheDir()).
		Str("data_dir", a.Paths.DataDir()).
		Msg("Cellar initialised")
	return nil
}

// Config returns the loaded configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// Renderer returns the output renderer
func (a *App) Renderer() *display.Renderer {
	return a.renderer
}

// Registry returns the formula registry over the configured formula dirs
func (a *App) Registry() *formula.Registry {
	return formula.NewRegistry(a.Fs, a.cfg.FormulaDirs...)
}

// Lookup resolves a formula name or path
func (a *App) Lookup(ref string) (*formula.Formula, error) {
	return a.Registry().Lookup(ref)
}

// Runner returns the process runner. Dry runs never start a process.
func (a *App) Runner(dryRun bool) runner.Runner {
	if dryRun {
		return runner.NewDryRunner()
	}
	// command output only reaches the console with -v, it always goes to the log
	var stdout, stderr io.Writer
	if a.Globals.Verbosity > 0 && a.renderer.Format() == display.FormatText {
		stdout, stderr = a.Stderr, a.Stderr
	}
	return a.NewRunner(stdout, stderr)
}

// Fetcher returns a source fetcher using r for VCS checkouts
func (a *App) Fetcher(r runner.Runner) *fetch.Fetcher {
	return fetch.New(fetch.Options{
		Fs:           a.Fs,
		Runner:       r,
		DownloadsDir: a.Paths.DownloadsDir(),
		BuildRoot:    a.Paths.BuildRoot(),
		Timeout:      a.cfg.Fetch.Timeout,
	})
}

// Executor assembles an executor for one install
func (a *App) Executor(dryRun bool) (*executor.Executor, error) {
	r := a.Runner(dryRun)
	resolver, err := deps.New(deps.Options{
		Runner:         r,
		PackageManager: a.cfg.PackageManager,
		Python:         a.cfg.Python,
		PipArgs:        a.cfg.PipArgs,
	})
	if err != nil {
		return nil, err
	}

	var observer executor.Observer
	if a.renderer.Format() == display.FormatText {
		interactive := false
		if f, ok := a.Stderr.(*os.File); ok {
			interactive = display.IsTerminal(f) && a.Globals.Verbosity == 0
		}
		observer = display.NewProgress(a.Stderr, interactive, a.styles)
	}

	return executor.New(executor.Options{
		Fs:            a.Fs,
		Paths:         a.Paths,
		Runner:        r,
		Fetcher:       a.Fetcher(r),
		Resolver:      resolver,
		ConfigureTool: a.cfg.Build.ConfigureTool,
		Observer:      observer,
	}), nil
}

// InstallFlags are the per-install command-line choices
type InstallFlags struct {
	With      []string
	WithTest  bool
	Head      bool
	Prefix    string
	KeepBuild bool
	DryRun    bool
	Jobs      int
}

// InstallOptions merges flags over configuration
func (a *App) InstallOptions(flags InstallFlags) executor.InstallOptions {
	options := formula.NewOptionSet(flags.With...)
	if flags.WithTest {
		options[formula.TestOption] = true
	}
	prefix := a.cfg.Prefix
	if flags.Prefix != "" {
		prefix = paths.ExpandHome(flags.Prefix)
	}
	jobs := a.cfg.Build.Jobs
	if flags.Jobs > 0 {
		jobs = flags.Jobs
	}
	return executor.InstallOptions{
		Prefix:    prefix,
		Options:   options,
		Head:      flags.Head,
		DryRun:    flags.DryRun,
		KeepBuild: flags.KeepBuild || a.cfg.Build.Keep,
		Jobs:      jobs,
		Python:    a.cfg.Python,
	}
}
