package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const completionHelp = `Write a completion script for the given shell to stdout.

Sourcing the script enables tab completion for laneflow commands,
flags, and output formats.

Try it out in the current shell:

  bash:        source <(laneflow completion bash)
  zsh:         source <(laneflow completion zsh)
  fish:        laneflow completion fish | source
  powershell:  laneflow completion powershell | Out-String | Invoke-Expression

To make it permanent, write the script where your shell picks it up
at startup:

  bash (Linux):  laneflow completion bash > /etc/bash_completion.d/laneflow
  bash (macOS):  laneflow completion bash > $(brew --prefix)/etc/bash_completion.d/laneflow
  zsh:           laneflow completion zsh > "${fpath[1]}/_laneflow"
  fish:          laneflow completion fish > ~/.config/fish/completions/laneflow.fish
  powershell:    add the script to your $PROFILE

Zsh users may need "autoload -U compinit; compinit" in ~/.zshrc first,
and a fresh shell after installing.
`

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  completionHelp,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}
