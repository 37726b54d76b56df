package info

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/cellar/internal/app"
)

// NewCommand creates the info command
func NewCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "info <formula|file>",
		Short:             MsgShort,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           "core",
		ValidArgsFunction: a.FormulaCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.Lookup(args[0])
			if err != nil {
				return err
			}
			return a.Renderer().Info(f)
		},
	}
}
