package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_Active(t *testing.T) {
	plain := Step{Program: "make"}
	onlyTest := Step{Program: "make", IfOption: TestOption}
	skipTest := Step{Program: "make", UnlessOption: TestOption}

	off := NewOptionSet()
	on := NewOptionSet(TestOption)

	assert.True(t, plain.Active(off))
	assert.True(t, plain.Active(on))
	assert.False(t, onlyTest.Active(off))
	assert.True(t, onlyTest.Active(on))
	assert.True(t, skipTest.Active(off))
	assert.False(t, skipTest.Active(on))
}

func TestStep_ResolvedArgs(t *testing.T) {
	s := Step{
		Program: "cmake",
		Args:    []string{".."},
		With: map[string][]string{
			"with-mpi": {"-DUSE_MPI=ON"},
			"with-doc": {"-DBuild_Documentation=ON"},
		},
		Without: map[string][]string{
			TestOption: {"-DBuild_Tests=OFF"},
		},
	}

	assert.Equal(t, []string{"..", "-DBuild_Tests=OFF"}, s.ResolvedArgs(NewOptionSet()))
	assert.Equal(t,
		[]string{"..", "-DBuild_Documentation=ON", "-DUSE_MPI=ON"},
		s.ResolvedArgs(NewOptionSet(TestOption, "with-mpi", "with-doc")))

	// the declared args slice is never mutated
	assert.Equal(t, []string{".."}, s.Args)
}

func TestFormula_RuntimeDependencies(t *testing.T) {
	f := &Formula{
		Dependencies: []Dependency{
			{Name: "cmake", Phase: PhaseBuild},
			{Name: "boost"},
			{Name: "numpy", Binding: BindingPython},
			{Name: "ipython", Binding: BindingPython, Optional: true},
		},
	}

	names := func(deps []Dependency) []string {
		var out []string
		for _, d := range deps {
			out = append(out, d.Name)
		}
		return out
	}

	assert.Equal(t, []string{"boost", "numpy"}, names(f.RuntimeDependencies(NewOptionSet())))
	assert.Equal(t, []string{"boost", "numpy", "ipython"}, names(f.RuntimeDependencies(NewOptionSet("with-ipython"))))
	assert.Equal(t, []string{"with-ipython"}, f.OptionNames())
	assert.True(t, f.HasOption("with-ipython"))
	assert.False(t, f.HasOption(TestOption))
}

func TestOptionSet_Sorted(t *testing.T) {
	s := NewOptionSet("with-test", "with-doc")
	s["with-off"] = false
	assert.Equal(t, []string{"with-doc", "with-test"}, s.Sorted())
}

func TestPrefixVar(t *testing.T) {
	assert.Equal(t, "triqs_prefix", PrefixVar("triqs"))
	assert.Equal(t, "open_mpi_prefix", PrefixVar("open-mpi"))

	v := Vars{PrefixVar("hdf5"): "/kegs/hdf5/1.10"}
	got, err := v.Expand("-DHDF5_ROOT={{hdf5_prefix}}")
	assert.NoError(t, err)
	assert.Equal(t, "-DHDF5_ROOT=/kegs/hdf5/1.10", got)
}

func TestVars_Expand(t *testing.T) {
	v := Vars{VarPrefix: "/opt/triqs", VarJobs: "4", VarPython: "/usr/bin/python3"}

	got, err := v.Expand("-DCMAKE_INSTALL_PREFIX={{prefix}}")
	assert.NoError(t, err)
	assert.Equal(t, "-DCMAKE_INSTALL_PREFIX=/opt/triqs", got)

	got, err = v.Expand("-j{{ jobs }}")
	assert.NoError(t, err)
	assert.Equal(t, "-j4", got)

	_, err = v.Expand("{{bogus}}")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "known: {{jobs}}, {{prefix}}, {{python}}")

	all, err := v.ExpandAll([]string{"{{python}}", "plain"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/python3", "plain"}, all)

	env, err := v.ExpandEnv(map[string]string{"PYTHONPATH": "{{prefix}}/lib", "CC": "clang"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"CC=clang", "PYTHONPATH=/opt/triqs/lib"}, env)
}
