package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/cellar/pkg/errors"
)

func TestCommand_String(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Program: "make", Args: []string{"install"}}, "make install"},
		{Command{Program: "cmake", Args: []string{"..", "-DCMAKE_INSTALL_PREFIX=/opt/my prefix"}}, "cmake .. '-DCMAKE_INSTALL_PREFIX=/opt/my prefix'"},
		{Command{Program: "echo", Args: []string{""}}, "echo ''"},
		{Command{Program: "sh", Args: []string{"-c", "it's"}}, `sh -c 'it'\''s'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.String())
	}
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

func TestExecRunner_Success(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	var stdout bytes.Buffer

	r := NewExecRunner(&stdout, nil)
	err := r.Run(context.Background(), Command{
		Program: "sh",
		Args:    []string{"-c", "echo $CELLAR_TEST_VALUE > out.txt; echo done"},
		Dir:     dir,
		Env:     []string{"CELLAR_TEST_VALUE=hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, "done\n", stdout.String())
	content, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner(nil, nil)

	err := r.Run(context.Background(), Command{Program: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))

	code, ok := errors.ExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)
	assert.Equal(t, "sh -c 'exit 3'", errors.GetErrorDetails(err)[errors.DetailCommand])
}

func TestExecRunner_MissingProgram(t *testing.T) {
	r := NewExecRunner(nil, nil)
	err := r.Run(context.Background(), Command{Program: "cellar-definitely-not-a-program"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandStart))

	_, err = Succeeds(context.Background(), r, Command{Program: "cellar-definitely-not-a-program"})
	assert.Error(t, err, "a missing program is not a plain 'no'")
}

func TestExecRunner_Succeeds(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner(nil, nil)

	ok, err := Succeeds(context.Background(), r, Command{Program: "true"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Succeeds(context.Background(), r, Command{Program: "false"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecRunner_Cancelled(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewExecRunner(nil, nil).Run(ctx, Command{Program: "sleep", Args: []string{"5"}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
}

func TestRecorder(t *testing.T) {
	var hooked []string
	r := NewRecorder().
		FailOn("make test", 2).
		Satisfied("brew list --versions cmake").
		OnRun(func(c Command) { hooked = append(hooked, c.Program) })

	ctx := context.Background()
	require.NoError(t, r.Run(ctx, Command{Program: "cmake", Args: []string{".."}}))
	err := r.Run(ctx, Command{Program: "make", Args: []string{"test"}})
	require.Error(t, err)
	code, _ := errors.ExitCode(err)
	assert.Equal(t, 2, code)

	ok, err := Succeeds(ctx, r, Command{Program: "brew", Args: []string{"list", "--versions", "cmake"}})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = Succeeds(ctx, r, Command{Program: "brew", Args: []string{"list", "--versions", "boost"}})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"cmake ..", "make test"}, r.Programs())
	assert.Equal(t, []string{"cmake"}, hooked, "hook only runs for successful commands")
}

// plainRunner is not a Checker, exercising the Succeeds fallback
type plainRunner struct{ err error }

func (p plainRunner) Run(context.Context, Command) error { return p.err }

func TestSucceeds_Fallback(t *testing.T) {
	ctx := context.Background()

	ok, err := Succeeds(ctx, plainRunner{}, Command{Program: "x"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Succeeds(ctx, plainRunner{err: ExitFailure(Command{Program: "x"}, 1)}, Command{Program: "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Succeeds(ctx, plainRunner{err: errors.New(errors.ErrCommandStart, "boom")}, Command{Program: "x"})
	assert.Error(t, err)
}

func TestDryRunner(t *testing.T) {
	r := NewDryRunner()
	require.NoError(t, r.Run(context.Background(), Command{Program: "rm", Args: []string{"-rf", "/"}}))

	ok, err := r.Succeeds(context.Background(), Command{Program: "true"})
	require.NoError(t, err)
	assert.False(t, ok)
}
