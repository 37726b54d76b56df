package runner

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/logging"
)

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Stdout and Stderr receive the child's output in addition to the log.
	// Nil leaves it in the log only.
	Stdout io.Writer
	Stderr io.Writer

	logger zerolog.Logger
}

// NewExecRunner returns a runner streaming child output to stdout/stderr
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{
		Stdout: stdout,
		Stderr: stderr,
		logger: logging.GetLogger("runner.exec"),
	}
}

// Run starts cmd and waits for it. Cancelling ctx kills the child.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	logging.LogCommand(r.logger, cmd.Program, cmd.Args, cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)

	stdoutLog := logging.NewLineWriter(r.logger, "stdout")
	stderrLog := logging.NewLineWriter(r.logger, "stderr")
	defer stdoutLog.Flush()
	defer stderrLog.Flush()

	c.Stdout = tee(stdoutLog, r.Stdout)
	c.Stderr = tee(stderrLog, r.Stderr)

	err := c.Run()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), errors.ErrCommandFailed, "%s interrupted", cmd.String()).
			WithDetail(errors.DetailCommand, cmd.String())
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		r.logger.Debug().Str("command", cmd.String()).Int("exit_code", code).Msg("Command failed")
		return ExitFailure(cmd, code)
	}

	return errors.Wrapf(err, errors.ErrCommandStart, "failed to start %s", cmd.Program).
		WithDetail(errors.DetailCommand, cmd.String())
}

// Succeeds runs cmd with output kept out of the console and reports whether
// it exited zero
func (r *ExecRunner) Succeeds(ctx context.Context, cmd Command) (bool, error) {
	quiet := &ExecRunner{logger: r.logger}
	err := quiet.Run(ctx, cmd)
	if err == nil {
		return true, nil
	}
	if _, ok := errors.ExitCode(err); ok {
		return false, nil
	}
	return false, err
}

func tee(log io.Writer, out io.Writer) io.Writer {
	if out == nil {
		return log
	}
	return io.MultiWriter(log, out)
}
