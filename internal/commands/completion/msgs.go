package completion

// Message constants
const (
	MsgShort = "Generate shell completion script"
	MsgLong  = `To load completions:

Bash:
  $ source <(cellar completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ cellar completion zsh > "${fpath[1]}/_cellar"

Fish:
  $ cellar completion fish > ~/.config/fish/completions/cellar.fish

PowerShell:
  PS> cellar completion powershell | Out-String | Invoke-Expression
`
)
