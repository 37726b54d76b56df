package fetch

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/cellar/internal/app"
	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/fetch"
)

// NewCommand creates the fetch command
func NewCommand(a *app.App) *cobra.Command {
	var head bool

	cmd := &cobra.Command{
		Use:               "fetch <formula|file>",
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
			fetcher := a.Fetcher(a.Runner(false))

			if head {
				src, err := fetcher.Fetch(cmd.Context(), f, true)
				if err != nil {
					return err
				}
				return a.Renderer().Fetched(f, src)
			}

			if !f.HasStableSource() {
				return errors.Newf(errors.ErrSourceFetch, "%s has no stable source, use --HEAD", f.Name)
			}
			archive, checksum, err := fetcher.Download(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.Renderer().Fetched(f, &fetch.Source{Archive: archive, Checksum: checksum})
		},
	}

	cmd.Flags().BoolVar(&head, "HEAD", false, MsgFlagHead)
	return cmd
}
