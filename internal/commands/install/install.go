package install

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/cellar/internal/app"
	"github.com/arthur-debert/cellar/pkg/display"
)

// NewCommand creates the install command
func NewCommand(a *app.App) *cobra.Command {
	var flags app.InstallFlags

	cmd := &cobra.Command{
		Use:               "install <formula|file>",
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
			exec, err := a.Executor(flags.DryRun)
			if err != nil {
				return err
			}

			result, err := exec.Install(cmd.Context(), f, a.InstallOptions(flags))
			if a.Renderer().Format() == display.FormatJSON {
				if renderErr := a.Renderer().Install(f, result, err); renderErr != nil {
					return renderErr
				}
				return app.Reported(err)
			}
			if err != nil {
				return err
			}
			return a.Renderer().Install(f, result, nil)
		},
	}

	app.BindInstallFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.KeepBuild, "keep-build", false, MsgFlagKeepBuild)
	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, MsgFlagDryRun)

	return cmd
}
