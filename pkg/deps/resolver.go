package deps

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/formula"
	"github.com/arthur-debert/cellar/pkg/logging"
	"github.com/arthur-debert/cellar/pkg/runner"
)

// Outcome records what happened to one dependency
type Outcome string

const (
	// OutcomeInstalled means an install command ran
	OutcomeInstalled Outcome = "installed"
	// OutcomePresent means the package manager already had it
	OutcomePresent Outcome = "present"
	// OutcomeSkipped means an optional dependency was not enabled
	OutcomeSkipped Outcome = "skipped"
)

// Resolved is the result for one declared dependency
type Resolved struct {
	Dependency formula.Dependency `json:"dependency"`
	Outcome    Outcome            `json:"outcome"`
}

// Options configures a Resolver
type Options struct {
	Runner         runner.Runner
	PackageManager string
	Python         string
	PipArgs        []string
}

// Resolver installs formula dependencies one at a time
type Resolver struct {
	runner  runner.Runner
	manager Manager
	python  string
	pipArgs []string
	logger  zerolog.Logger
}

// New returns a Resolver. An unknown package manager is an error.
func New(opts Options) (*Resolver, error) {
	name := opts.PackageManager
	if name == "" {
		name = "brew"
	}
	m, ok := LookupManager(name)
	if !ok {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown package manager %q (known: %s)",
			name, strings.Join(ManagerNames(), ", "))
	}
	python := opts.Python
	if python == "" {
		python = "python3"
	}
	return &Resolver{
		runner:  opts.Runner,
		manager: m,
		python:  python,
		pipArgs: opts.PipArgs,
		logger:  logging.GetLogger("deps"),
	}, nil
}

// Enabled reports whether dep takes part in an install with the given options
func Enabled(dep formula.Dependency, enabled formula.OptionSet) bool {
	return !dep.Optional || enabled.Has(dep.OptionName())
}

// InstallCommand is the command that installs dep
func (r *Resolver) InstallCommand(dep formula.Dependency) runner.Command {
	if dep.Binding == formula.BindingPython {
		requirement := dep.Name
		if dep.Version != "" {
			requirement += "==" + dep.Version
		}
		args := []string{"-m", "pip", "install"}
		args = append(args, r.pipArgs...)
		args = append(args, requirement)
		return runner.Command{Program: r.python, Args: args}
	}
	return r.manager.Install(systemPackage(dep))
}

// systemPackage follows the Homebrew name@version convention for pinned
// system packages
func systemPackage(dep formula.Dependency) string {
	if dep.Version == "" {
		return dep.Name
	}
	return dep.Name + "@" + dep.Version
}

// Resolve installs deps in declaration order and stops at the first failure
func (r *Resolver) Resolve(ctx context.Context, deps []formula.Dependency, enabled formula.OptionSet) ([]Resolved, error) {
	results := make([]Resolved, 0, len(deps))
	for _, dep := range deps {
		if dep.Binding == formula.BindingCellar {
			// kegs from cellar itself, checked by the executor
			continue
		}
		if !Enabled(dep, enabled) {
			r.logger.Debug().Str("dependency", dep.Name).Msg("Optional dependency not enabled")
			results = append(results, Resolved{Dependency: dep, Outcome: OutcomeSkipped})
			continue
		}

		outcome, err := r.resolveOne(ctx, dep)
		if err != nil {
			return results, err
		}
		results = append(results, Resolved{Dependency: dep, Outcome: outcome})
	}
	return results, nil
}

func (r *Resolver) resolveOne(ctx context.Context, dep formula.Dependency) (Outcome, error) {
	logger := r.logger.With().Str("dependency", dep.Name).Logger()

	if dep.Binding != formula.BindingPython {
		check := r.manager.Check(systemPackage(dep))
		present, err := runner.Succeeds(ctx, r.runner, check)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrDependencyInstall, "failed to query %s for %s", r.manager.Name, dep.Name).
				WithDetail(errors.DetailStep, dep.Name)
		}
		if present {
			logger.Info().Msg("Dependency already installed")
			return OutcomePresent, nil
		}
	}

	cmd := r.InstallCommand(dep)
	if err := r.runner.Run(ctx, cmd); err != nil {
		return "", errors.Wrapf(err, errors.ErrDependencyInstall, "failed to install dependency %s", dep.Name).
			WithDetail(errors.DetailStep, dep.Name)
	}
	logger.Info().Msg("Dependency installed")
	return OutcomeInstalled, nil
}
