package plan

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/cellar/internal/app"
)

// NewCommand creates the plan command
func NewCommand(a *app.App) *cobra.Command {
	var flags app.InstallFlags

	cmd := &cobra.Command{
		Use:               "plan <formula|file>",
		Short:             MsgShort,
		Long:              MsgLong,
		Example:           MsgExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           "core",
		ValidArgsFunction: a.FormulaCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.Lookup(args[0])
			if err != nil {
				return err
			}
			exec, err := a.Executor(true)
			if err != nil {
				return err
			}
			p, err := exec.Plan(f, a.InstallOptions(flags))
			if err != nil {
				return err
			}
			return a.Renderer().Plan(p)
		},
	}

	app.BindInstallFlags(cmd, &flags)
	return cmd
}
