package list

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/cellar/internal/app"
)

// NewCommand creates the list command
func NewCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgShort,
		Long:    MsgLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := a.Registry().List()
			if err != nil {
				return err
			}
			return a.Renderer().List(sources)
		},
	}
}
