package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
	"github.com/towardsthecloud/aws-utils/internal/config"
	"github.com/towardsthecloud/aws-utils/internal/service/cloudformation"
	"github.com/towardsthecloud/aws-utils/internal/service/cloudwatch"
	"github.com/towardsthecloud/aws-utils/internal/service/dynamodb"
	"github.com/towardsthecloud/aws-utils/internal/service/ec2"
	"github.com/towardsthecloud/aws-utils/internal/service/ecs"
	"github.com/towardsthecloud/aws-utils/internal/service/efs"
	"github.com/towardsthecloud/aws-utils/internal/service/iam"
	"github.com/towardsthecloud/aws-utils/internal/service/kms"
	"github.com/towardsthecloud/aws-utils/internal/service/lambda"
	"github.com/towardsthecloud/aws-utils/internal/service/org"
	"github.com/towardsthecloud/aws-utils/internal/service/r53"
	"github.com/towardsthecloud/aws-utils/internal/service/s3"
	"github.com/towardsthecloud/aws-utils/internal/service/ssm"
	"github.com/towardsthecloud/aws-utils/internal/version"
)

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "awsutils",
		Short: "Everyday AWS operations from one CLI",
		Long:  "awsutils wraps common AWS SDK calls and drains paginated listings behind a consistent CLI and safety defaults.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Root().PersistentFlags()

			configFile, err := flags.GetString("config")
			if err != nil {
				return fmt.Errorf("read --config: %w", err)
			}
			envFile, err := flags.GetString("env-file")
			if err != nil {
				return fmt.Errorf("read --env-file: %w", err)
			}
			if _, err := config.Load(flags, config.LoadOptions{ConfigFile: configFile, EnvFile: envFile}); err != nil {
				return err
			}

			outputFormat, err := flags.GetString("output")
			if err != nil {
				return fmt.Errorf("read --output: %w", err)
			}
			if _, ok := cliutil.ValidOutputFormats[outputFormat]; !ok {
				return fmt.Errorf("invalid --output %q (valid: table, json, text, yaml)", outputFormat)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := cliutil.GlobalOptionsFromCommand(cmd)
			if err != nil {
				return err
			}
			if opts.ShowVersion {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Detailed())
				return err
			}
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	cliutil.RegisterGlobalFlags(rootCmd)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: .awsutils.yaml in the working directory or $HOME)")
	rootCmd.PersistentFlags().String("env-file", "", "Env file loaded before resolving settings (default: .env when present)")

	rootCmd.AddCommand(newCompletionCommand())
	rootCmd.AddCommand(newVersionCommand())

	rootCmd.AddCommand(cloudformation.NewCommand())
	rootCmd.AddCommand(cloudwatch.NewCommand())
	rootCmd.AddCommand(dynamodb.NewCommand())
	rootCmd.AddCommand(ec2.NewCommand())
	rootCmd.AddCommand(ecs.NewCommand())
	rootCmd.AddCommand(efs.NewCommand())
	rootCmd.AddCommand(iam.NewCommand())
	rootCmd.AddCommand(kms.NewCommand())
	rootCmd.AddCommand(lambda.NewCommand())
	rootCmd.AddCommand(org.NewCommand())
	rootCmd.AddCommand(r53.NewCommand())
	rootCmd.AddCommand(s3.NewCommand())
	rootCmd.AddCommand(ssm.NewCommand())

	applyCommandHelpDefaults(rootCmd)

	return rootCmd
}
