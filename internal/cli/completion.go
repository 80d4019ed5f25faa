package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command. It runs without a
// config file so completion scripts can be generated anywhere.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for bookdash.

View names are completed for "bookdash views".

  bash:       source <(bookdash completion bash)
  zsh:        bookdash completion zsh > "${fpath[1]}/_bookdash"
  fish:       bookdash completion fish | source
  powershell: bookdash completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		Annotations:           map[string]string{annotationNoConfig: "true"},
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}
