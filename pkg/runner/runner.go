package runner

import (
	"context"
	"strings"

	"github.com/arthur-debert/cellar/pkg/errors"
)

// Command is one external program invocation
type Command struct {
	Program string   `json:"program"`
	Args    []string `json:"args,omitempty"`
	Dir     string   `json:"dir,omitempty"`
	// Env entries (KEY=VALUE) are added on top of the parent environment
	Env []string `json:"env,omitempty"`
}

// String renders the command as a shell-like line for logs and errors
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Program))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n'\"$`\\|&;<>()*?[]{}") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}

// Runner runs commands to completion
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// Checker is implemented by runners that can answer yes/no questions such as
// "is this package installed" without treating a non-zero exit as fatal
type Checker interface {
	Succeeds(ctx context.Context, cmd Command) (bool, error)
}

// Succeeds runs cmd through r and reports whether it exited zero. Start
// failures (missing program) are returned as errors.
func Succeeds(ctx context.Context, r Runner, cmd Command) (bool, error) {
	if p, ok := r.(Checker); ok {
		return p.Succeeds(ctx, cmd)
	}
	err := r.Run(ctx, cmd)
	if err == nil {
		return true, nil
	}
	if errors.IsErrorCode(err, errors.ErrCommandFailed) {
		if _, ok := errors.ExitCode(err); ok {
			return false, nil
		}
	}
	return false, err
}

// ExitFailure builds the error runners return for a non-zero exit status
func ExitFailure(cmd Command, code int) *errors.CellarError {
	return errors.Newf(errors.ErrCommandFailed, "%s exited with status %d", cmd.String(), code).
		WithDetail(errors.DetailCommand, cmd.String()).
		WithDetail(errors.DetailExitCode, code)
}
