package cli

// Message constants
const (
	MsgRootShort = "Build and install software from declarative formulas"
	MsgRootLong  = `cellar installs scientific software from source. A formula declares where
the source lives, its checksum, its dependencies and the build, test,
install and post-install steps; cellar runs them in order and stops at the
first failure.

Configuration is read from $XDG_CONFIG_HOME/cellar/config.toml (or .yaml),
CELLAR_* environment variables (CELLAR_BUILD__JOBS sets build.jobs) and
command-line flags, in increasing precedence.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file (default $XDG_CONFIG_HOME/cellar/config.toml)"
	MsgFlagOutput  = "Output format: text or json"

	MsgErrNoCommand = "no command specified"
)

// MsgUsageTemplate groups commands under section titles
const MsgUsageTemplate = `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
