package runner

import (
	"context"
	"strings"
	"sync"
)

// Recorder is a Runner that records commands instead of running them.
// Tests script failures with FailOn and presence checks with Satisfied.
type Recorder struct {
	mu        sync.Mutex
	commands  []Command
	failures  map[string]int
	satisfied map[string]bool
	hook      func(Command)
}

// NewRecorder returns an empty recorder where every command succeeds
func NewRecorder() *Recorder {
	return &Recorder{
		failures:  make(map[string]int),
		satisfied: make(map[string]bool),
	}
}

// FailOn makes the command whose String() equals line exit with code
func (r *Recorder) FailOn(line string, code int) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[line] = code
	return r
}

// Satisfied makes Succeeds report true for the command line
func (r *Recorder) Satisfied(line string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.satisfied[line] = true
	return r
}

// OnRun registers a callback invoked for every successful Run, used to
// simulate side effects such as `make install` creating files
func (r *Recorder) OnRun(hook func(Command)) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
	return r
}

func (r *Recorder) Run(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	code, fail := r.failures[cmd.String()]
	hook := r.hook
	r.mu.Unlock()

	if fail {
		return ExitFailure(cmd, code)
	}
	if hook != nil {
		hook(cmd)
	}
	return nil
}

func (r *Recorder) Succeeds(ctx context.Context, cmd Command) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.satisfied[cmd.String()], nil
}

// Commands returns the recorded commands in execution order
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

// Programs returns "program firstArg" summaries, convenient for order checks
func (r *Recorder) Programs() []string {
	cmds := r.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
	}
	return out
}
