package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fmacia/subclass-ide-helper/internal/generator"
	"github.com/fmacia/subclass-ide-helper/internal/registry"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for sih.

To load completions:

Bash:

  $ source <(sih completion bash)

Zsh:

  # To load completions for each session, execute once:
  $ sih completion zsh > "${fpath[1]}/_sih"

Fish:

  $ sih completion fish | source

PowerShell:

  PS> sih completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()

			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// entityTypeCompletion completes the comma separated entity_types argument
// from the entity types of the configured manifest. Database sources are not
// queried while completing.
func entityTypeCompletion(global *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		cfg, err := global.loadConfig(cmd)
		if err != nil || (cfg.Source.Kind != "" && cfg.Source.Kind != registry.KindManifest) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		mem, err := registry.LoadManifest(cfg.Source.Manifest)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		// Complete the last list item, keeping the ones already typed
		typed := generator.SplitList(toComplete)
		prefix := strings.Join(typed[:len(typed)-1], generator.ListSeparator)
		if prefix != "" {
			prefix += generator.ListSeparator
		}
		current := typed[len(typed)-1]

		completions := []string{}
		for _, et := range mem.EntityTypes() {
			if strings.HasPrefix(et, current) {
				completions = append(completions, prefix+et)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
