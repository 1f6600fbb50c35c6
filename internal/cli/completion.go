package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// completionGenerators writes a completion script for root. The bool asks for
// command descriptions where the shell supports them.
var completionGenerators = map[string]func(root *cobra.Command, w io.Writer, descriptions bool) error{
	"bash": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		return root.GenBashCompletionV2(w, descriptions)
	},
	"zsh": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		if descriptions {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	},
	"fish": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		return root.GenFishCompletion(w, descriptions)
	},
	"powershell": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		if descriptions {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	},
}

func completionShells() []string {
	shells := make([]string, 0, len(completionGenerators))
	for shell := range completionGenerators {
		shells = append(shells, shell)
	}
	sort.Strings(shells)
	return shells
}

func newCompletionCommand() *cobra.Command {
	var noDescriptions bool

	cmd := &cobra.Command{
		Use:   "completion [bash|fish|powershell|zsh]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for awsutils and write it to stdout.

Load it once per session, or save it where your shell picks it up:

  source <(awsutils completion bash)
  awsutils completion zsh > "${fpath[1]}/_awsutils"
  awsutils completion fish > ~/.config/fish/completions/awsutils.fish
  awsutils completion powershell >> $PROFILE.CurrentUserAllHosts

Start a new shell after saving a script.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: completionShells(),
		RunE: func(cmd *cobra.Command, args []string) error {
			generate, ok := completionGenerators[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return generate(cmd.Root(), cmd.OutOrStdout(), !noDescriptions)
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&noDescriptions, "no-descriptions", false, "Leave command descriptions out of the script")

	return cmd
}
