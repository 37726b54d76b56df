package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/cellar/internal/app"
	"github.com/arthur-debert/cellar/internal/commands/completion"
	fetchcmd "github.com/arthur-debert/cellar/internal/commands/fetch"
	"github.com/arthur-debert/cellar/internal/commands/info"
	"github.com/arthur-debert/cellar/internal/commands/install"
	"github.com/arthur-debert/cellar/internal/commands/list"
	"github.com/arthur-debert/cellar/internal/commands/plan"
	versioncmd "github.com/arthur-debert/cellar/internal/commands/version"
	"github.com/arthur-debert/cellar/internal/version"
	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd(a *app.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "cellar",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.Globals.Verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return a.Init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.Globals.Verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.Globals.ConfigFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&a.Globals.Output, "output", "o", "", MsgFlagOutput)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)
	rootCmd.SetOut(a.Stdout)
	rootCmd.SetErr(a.Stderr)

	rootCmd.AddCommand(install.NewCommand(a))
	rootCmd.AddCommand(plan.NewCommand(a))
	rootCmd.AddCommand(info.NewCommand(a))
	rootCmd.AddCommand(list.NewCommand(a))
	rootCmd.AddCommand(fetchcmd.NewCommand(a))
	rootCmd.AddCommand(versioncmd.NewCommand())
	rootCmd.AddCommand(completion.NewCommand())

	return rootCmd
}
