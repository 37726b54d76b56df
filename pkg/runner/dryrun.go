package runner

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/cellar/pkg/logging"
)

// DryRunner logs commands instead of running them. Every presence check answers
// "not satisfied" so a dry run shows the full install sequence.
type DryRunner struct {
	logger zerolog.Logger
}

// NewDryRunner returns a runner that never starts a process
func NewDryRunner() *DryRunner {
	return &DryRunner{logger: logging.GetLogger("runner.dryrun")}
}

func (r *DryRunner) Run(ctx context.Context, cmd Command) error {
	r.logger.Info().Str("command", cmd.String()).Str("dir", cmd.Dir).Msg("Would execute")
	return ctx.Err()
}

func (r *DryRunner) Succeeds(ctx context.Context, cmd Command) (bool, error) {
	return false, ctx.Err()
}
