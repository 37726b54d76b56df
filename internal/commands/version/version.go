package version

import (
	"fmt"

	"github.com/spf13/cobra"

	buildinfo "github.com/arthur-debert/cellar/internal/version"
)

// NewCommand creates the version command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgShort,
		Long:    MsgLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, MsgVersionFormat, buildinfo.Version)
			_, _ = fmt.Fprintf(out, MsgCommitFormat, buildinfo.Commit)
			_, _ = fmt.Fprintf(out, MsgBuiltFormat, buildinfo.Date)
		},
	}
}
