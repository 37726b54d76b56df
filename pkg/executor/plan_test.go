package executor

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cellar/pkg/deps"
	"github.com/arthur-debert/cellar/pkg/formula"
	"github.com/arthur-debert/cellar/pkg/paths"
	"github.com/arthur-debert/cellar/pkg/runner"
)

func planExecutor(t *testing.T) *Executor {
	t.Helper()
	resolver, err := deps.New(deps.Options{Runner: runner.NewRecorder(), Python: "python3"})
	require.NoError(t, err)
	return New(Options{Fs: afero.NewMemMapFs(), Paths: paths.NewWithRoot("/"), Resolver: resolver})
}

func TestPlan_EmbeddedTriqs(t *testing.T) {
	f, err := formula.NewRegistry(afero.NewMemMapFs()).Lookup("triqs")
	require.NoError(t, err)

	p, err := planExecutor(t).Plan(f, InstallOptions{Jobs: 8, Python: "/usr/local/bin/python3"})
	require.NoError(t, err)

	assert.Equal(t, "/data/Cellar/triqs/1.4", p.Prefix)
	assert.Equal(t, "1.4", p.Version)

	var build []string
	for _, s := range p.StepsFor(StageBuild) {
		build = append(build, s.String())
	}
	assert.Equal(t, []string{
		"cmake .. -DCMAKE_INSTALL_PREFIX=/data/Cellar/triqs/1.4 -DCMAKE_BUILD_TYPE=Release -DPYTHON_INTERPRETER=/usr/local/bin/python3 -DBuild_Tests=OFF",
		"make -j8",
	}, build)
	assert.Empty(t, p.StepsFor(StageTest))
	assert.Equal(t, "<source>/build", p.StepsFor(StageBuild)[0].Command.Dir)

	// ipython is optional and not enabled
	depSteps := p.StepsFor(StageDependencies)
	assert.Equal(t, "brew install cmake", depSteps[0].String())
	assert.Equal(t, "python3 -m pip install jinja2", depSteps[len(depSteps)-1].String())

	post := p.StepsFor(StagePostInstall)
	require.Len(t, post, 1)
	assert.Equal(t, []string{"/data/Cellar/triqs/1.4/bin/pytriqs", "/data/Cellar/triqs/1.4/bin/ipytriqs"}, post[0].Chmod.Paths)
}

func TestPlan_WithTestAndHead(t *testing.T) {
	f, err := formula.NewRegistry(afero.NewMemMapFs()).Lookup("triqs")
	require.NoError(t, err)

	p, err := planExecutor(t).Plan(f, InstallOptions{
		Jobs:    2,
		Head:    true,
		Options: formula.NewOptionSet(formula.TestOption, "with-ipython"),
	})
	require.NoError(t, err)

	assert.Equal(t, "/data/Cellar/triqs/HEAD", p.Prefix)
	assert.Equal(t, "clone https://github.com/TRIQS/triqs.git", p.Steps[0].String())
	assert.NotContains(t, p.StepsFor(StageBuild)[0].String(), "Build_Tests")
	require.Len(t, p.StepsFor(StageTest), 1)
	assert.Equal(t, "make test", p.StepsFor(StageTest)[0].String())

	depSteps := p.StepsFor(StageDependencies)
	assert.Equal(t, "python3 -m pip install ipython", depSteps[len(depSteps)-1].String())
}

func TestPlan_PluginBuildsAgainstTriqsKeg(t *testing.T) {
	f, err := formula.NewRegistry(afero.NewMemMapFs()).Lookup("triqs_cthyb_matrix")
	require.NoError(t, err)

	for _, head := range []bool{false, true} {
		p, err := planExecutor(t).Plan(f, InstallOptions{Jobs: 1, Head: head})
		require.NoError(t, err)

		configure := p.StepsFor(StageBuild)[0].String()
		assert.Contains(t, configure, "-DTRIQS_PATH=/data/Cellar/triqs/1.4", "head=%v", head)
		if head {
			assert.Equal(t, "/data/Cellar/triqs_cthyb_matrix/HEAD", p.Prefix)
		}

		var depSteps []string
		for _, s := range p.StepsFor(StageDependencies) {
			depSteps = append(depSteps, s.String())
		}
		assert.Contains(t, depSteps, "use triqs 1.4 keg /data/Cellar/triqs/1.4")
		assert.NotContains(t, depSteps, "brew install triqs")
	}
}

func TestPlan_UnknownPlaceholder(t *testing.T) {
	f := testFormula()
	f.Build[1].Args = []string{"-j{{cores}}"}

	_, err := planExecutor(t).Plan(f, InstallOptions{Prefix: "/p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{cores}}")
	assert.Contains(t, err.Error(), "known: {{jobs}}, {{kegs}}, {{name}}, {{prefix}}, {{python}}, {{source}}, {{version}}")
}

func TestPlan_StepEnvAndOptionGates(t *testing.T) {
	f := testFormula()
	f.Options = []formula.Option{{Name: "with-mpi"}}
	f.Build = []formula.Step{
		{Program: "cmake", Args: []string{".."}, With: map[string][]string{"with-mpi": {"-DUSE_MPI=ON"}}, Env: map[string]string{"CXX": "mpicxx", "PREFIX": "{{prefix}}"}},
		{Program: "make", Args: []string{"docs"}, IfOption: "with-mpi"},
		{Program: "make", Args: []string{"serial"}, UnlessOption: "with-mpi"},
	}

	p, err := planExecutor(t).Plan(f, InstallOptions{Prefix: "/p", Options: formula.NewOptionSet("with-mpi")})
	require.NoError(t, err)

	build := p.StepsFor(StageBuild)
	require.Len(t, build, 2)
	assert.Equal(t, "cmake .. -DUSE_MPI=ON", build[0].String())
	assert.Equal(t, []string{"CXX=mpicxx", "PREFIX=/p"}, build[0].Command.Env)
	assert.Equal(t, "make docs", build[1].String())
	assert.Equal(t, 2, build[1].Index)
}

func TestOctalRoundTrip(t *testing.T) {
	for _, m := range []uint32{0o555, 0o755, 0o4755, 0o1777} {
		assert.Equal(t, m, octal(fileMode(m)))
	}
}
