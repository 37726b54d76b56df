package app

import (
	"github.com/spf13/cobra"
)

// BindInstallFlags registers the flags install and plan share
func BindInstallFlags(cmd *cobra.Command, flags *InstallFlags) {
	cmd.Flags().StringArrayVar(&flags.With, "with", nil, "Enable a formula option (repeatable), e.g. --with with-ipython")
	cmd.Flags().BoolVar(&flags.WithTest, "with-test", false, "Run the formula's test steps")
	cmd.Flags().BoolVar(&flags.Head, "HEAD", false, "Build from the head (VCS) source instead of the pinned release")
	cmd.Flags().StringVar(&flags.Prefix, "prefix", "", "Install prefix (default <data>/Cellar/<name>/<version>)")
	cmd.Flags().IntVarP(&flags.Jobs, "jobs", "j", 0, "Parallel build jobs (default from config, then CPU count)")
}

// FormulaCompletion completes formula names
func (a *App) FormulaCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if a.cfg == nil {
		if err := a.Init(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	sources, err := a.Registry().List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	// paths to formula files are valid too
	return names, cobra.ShellCompDirectiveDefault
}
