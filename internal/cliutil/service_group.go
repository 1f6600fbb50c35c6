package cliutil

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewServiceGroupCommand creates a parent command for a service that just shows help.
func NewServiceGroupCommand(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long: fmt.Sprintf("%s.\n\n"+
			"List commands read every page before printing anything. Bound them with --max-pages and --timeout,\n"+
			"or pass --allow-partial to print what was read before a failure (the command still exits non-zero).\n"+
			"Listings are not snapshots: items changed while the walk runs may be missing or stale.", short),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}
