package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cellar/internal/app"
	"github.com/arthur-debert/cellar/internal/version"
	"github.com/arthur-debert/cellar/pkg/config"
	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/paths"
	"github.com/arthur-debert/cellar/pkg/runner"
)

type cliHarness struct {
	app    *app.App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *runner.Recorder
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	h := &cliHarness{
		app:    app.New(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		runner: runner.NewRecorder(),
	}
	h.app.Stdout = h.stdout
	h.app.Stderr = h.stderr
	h.app.Paths = paths.NewWithRoot(t.TempDir())
	h.app.LoadConfig = func(opts config.LoadOptions) (*config.Config, error) {
		opts.SkipEnv = true
		return config.Load(opts)
	}
	h.app.NewRunner = func(stdout, stderr io.Writer) runner.Runner {
		return h.runner
	}
	return h
}

func (h *cliHarness) run(args ...string) error {
	cmd := NewRootCmd(h.app)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestPlanCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("plan", "triqs"))

	out := h.stdout.String()
	assert.Contains(t, out, "triqs 1.4")
	assert.Contains(t, out, "-DCMAKE_BUILD_TYPE=Release")
	assert.Contains(t, out, "-DBuild_Tests=OFF")
	assert.Contains(t, out, "make install")
	assert.Contains(t, out, "chmod 0555")
	assert.NotContains(t, out, "make test")
	assert.Empty(t, h.runner.Commands())
}

func TestPlanCommandJSON(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("plan", "triqs", "--with-test", "-o", "json"))

	var plan struct {
		Formula string   `json:"formula"`
		Version string   `json:"version"`
		Options []string `json:"options"`
		Steps   []struct {
			Stage string `json:"stage"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &plan))
	assert.Equal(t, "triqs", plan.Formula)
	assert.Equal(t, "1.4", plan.Version)
	assert.Contains(t, plan.Options, "with-test")

	stages := map[string]int{}
	for _, s := range plan.Steps {
		stages[s.Stage]++
	}
	assert.Equal(t, 2, stages["build"])
	assert.Equal(t, 1, stages["test"])
	assert.Equal(t, 1, stages["post_install"])
}

func TestInstallDryRunStartsNothing(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("install", "triqs", "--dry-run"))

	assert.Empty(t, h.runner.Commands())
	assert.Contains(t, h.stdout.String(), "Dry run")
}

func TestListCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("list"))

	out := h.stdout.String()
	assert.Contains(t, out, "triqs (embedded)")
	assert.Contains(t, out, "triqs_cthyb_matrix (embedded)")
}

func TestInfoUnknownFormula(t *testing.T) {
	h := newHarness(t)

	err := h.run("info", "no-such-formula")

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFormulaNotFound))
}

func TestInvalidOutputFormat(t *testing.T) {
	h := newHarness(t)

	err := h.run("list", "-o", "xml")

	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("version"))

	assert.Contains(t, h.stdout.String(), version.Version)
}

func TestNoCommand(t *testing.T) {
	h := newHarness(t)

	err := h.run()

	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgErrNoCommand)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
