package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for the pdfextract CLI.

To load completions:

Bash:
  $ source <(pdfextract-cli completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pdfextract-cli completion bash > /etc/bash_completion.d/pdfextract-cli
  # macOS:
  $ pdfextract-cli completion bash > $(brew --prefix)/etc/bash_completion.d/pdfextract-cli

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pdfextract-cli completion zsh > "${fpath[1]}/_pdfextract-cli"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ pdfextract-cli completion fish | source

  # To load completions for each session, execute once:
  $ pdfextract-cli completion fish > ~/.config/fish/completions/pdfextract-cli.fish

PowerShell:
  PS> pdfextract-cli completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> pdfextract-cli completion powershell > pdfextract-cli.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(out)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(out)
		case "fish":
			_ = cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}
