package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/towardsthecloud/aws-utils/internal/version"
)

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text := version.Detailed()
			if short {
				text = version.Short()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the release version")

	return cmd
}
