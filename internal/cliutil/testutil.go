package cliutil

import "github.com/spf13/cobra"

// RegisterGlobalFlags adds the persistent flags every command reads through GlobalOptionsFromCommand.
func RegisterGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("profile", "p", "", "AWS CLI profile name")
	flags.StringP("region", "r", "", "AWS region override")
	flags.Bool("dry-run", false, "Preview changes without executing")
	flags.StringP("output", "o", "table", "Output format: table, json, text, yaml")
	flags.Bool("no-confirm", false, "Skip confirmation prompts")
	flags.Bool("version", false, "Print build metadata and exit")
	flags.Int("max-pages", 0, "Fail listings that need more than this many pages (0 = unbounded); listings are not snapshots")
	flags.Duration("timeout", 0, "Abort the command after this duration (0 = no timeout)")
	flags.Bool("allow-partial", false, "Print rows gathered before a listing failed, then exit with the error")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json")
}

// NewTestRootCommand wraps a service command under a minimal root that has all
// persistent flags, suitable for use in service-package tests.
func NewTestRootCommand(serviceCmd *cobra.Command) *cobra.Command {
	root := &cobra.Command{
		Use:          "awsutils",
		SilenceUsage: true,
	}

	RegisterGlobalFlags(root)
	root.AddCommand(serviceCmd)

	return root
}
