package deps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/formula"
	"github.com/arthur-debert/cellar/pkg/runner"
)

func triqsDeps() []formula.Dependency {
	return []formula.Dependency{
		{Name: "cmake", Phase: formula.PhaseBuild},
		{Name: "boost"},
		{Name: "numpy", Binding: formula.BindingPython},
		{Name: "mako", Binding: formula.BindingPython, Version: "1.0.7"},
		{Name: "ipython", Binding: formula.BindingPython, Optional: true},
	}
}

func newResolver(t *testing.T, rec *runner.Recorder, pipArgs ...string) *Resolver {
	t.Helper()
	r, err := New(Options{Runner: rec, Python: "/usr/bin/python3", PipArgs: pipArgs})
	require.NoError(t, err)
	return r
}

func TestResolve_InstallsInDeclarationOrder(t *testing.T) {
	rec := runner.NewRecorder().Satisfied("brew list --versions cmake")
	r := newResolver(t, rec)

	results, err := r.Resolve(context.Background(), triqsDeps(), formula.NewOptionSet())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"brew install boost",
		"/usr/bin/python3 -m pip install numpy",
		"/usr/bin/python3 -m pip install mako==1.0.7",
	}, rec.Programs())

	require.Len(t, results, 5)
	assert.Equal(t, OutcomePresent, results[0].Outcome)
	assert.Equal(t, OutcomeInstalled, results[1].Outcome)
	assert.Equal(t, OutcomeInstalled, results[3].Outcome)
	assert.Equal(t, OutcomeSkipped, results[4].Outcome)
}

func TestResolve_OptionalDependencyEnabled(t *testing.T) {
	rec := runner.NewRecorder()
	r := newResolver(t, rec, "--user")

	deps := triqsDeps()[4:]
	results, err := r.Resolve(context.Background(), deps, formula.NewOptionSet("with-ipython"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/python3 -m pip install --user ipython"}, rec.Programs())
	assert.Equal(t, OutcomeInstalled, results[0].Outcome)
}

func TestResolve_FailureStops(t *testing.T) {
	rec := runner.NewRecorder().FailOn("brew install boost", 1)
	r := newResolver(t, rec)

	results, err := r.Resolve(context.Background(), triqsDeps(), formula.NewOptionSet())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDependencyInstall))
	assert.Equal(t, "boost", errors.GetErrorDetails(err)[errors.DetailStep])

	code, ok := errors.ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 1, code)

	// nothing after boost ran
	assert.Equal(t, []string{"brew install cmake", "brew install boost"}, rec.Programs())
	assert.Len(t, results, 1)
}

func TestNew_UnknownManager(t *testing.T) {
	_, err := New(Options{PackageManager: "pacman"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestInstallCommand_Managers(t *testing.T) {
	tests := []struct {
		manager string
		dep     formula.Dependency
		want    string
	}{
		{"brew", formula.Dependency{Name: "open-mpi"}, "brew install open-mpi"},
		{"brew", formula.Dependency{Name: "python", Version: "3.11"}, "brew install python@3.11"},
		{"apt-get", formula.Dependency{Name: "libhdf5-dev"}, "apt-get install -y libhdf5-dev"},
		{"dnf", formula.Dependency{Name: "fftw-devel"}, "dnf install -y fftw-devel"},
		{"dnf", formula.Dependency{Name: "scipy", Binding: formula.BindingPython}, "python3 -m pip install scipy"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r, err := New(Options{PackageManager: tt.manager})
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.InstallCommand(tt.dep).String())
		})
	}
}

func TestEnabled(t *testing.T) {
	dep := formula.Dependency{Name: "ipython", Optional: true}
	assert.False(t, Enabled(dep, formula.NewOptionSet()))
	assert.True(t, Enabled(dep, formula.NewOptionSet("with-ipython")))
	assert.True(t, Enabled(formula.Dependency{Name: "boost"}, formula.NewOptionSet()))
}

func TestResolve_LeavesCellarKegsAlone(t *testing.T) {
	rec := runner.NewRecorder()
	r := newResolver(t, rec)

	results, err := r.Resolve(context.Background(), []formula.Dependency{
		{Name: "triqs", Binding: formula.BindingCellar, Version: "1.4"},
		{Name: "boost"},
	}, formula.NewOptionSet())
	require.NoError(t, err)

	assert.Equal(t, []string{"brew install boost"}, rec.Programs())
	require.Len(t, results, 1)
	assert.Equal(t, "boost", results[0].Dependency.Name)
}
