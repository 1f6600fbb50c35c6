package ssm

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the SSM client used by this package.
type API interface {
	DescribeParameters(context.Context, *ssm.DescribeParametersInput, ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return ssm.NewFromConfig(cfg)
}

// NewCommand returns the ssm service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("ssm", "Inspect SSM resources")
	cmd.AddCommand(newListParametersCommand())
	return cmd
}

func newListParametersCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list-parameters",
		Short: "List SSM parameter metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListParameters(cmd, prefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list parameters whose name begins with this value")

	return cmd
}

func runListParameters(cmd *cobra.Command, prefix string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	parameters, err := cliutil.Collect(cmd, runtime, parameterPages(client, strings.TrimSpace(prefix)))
	if err != nil && len(parameters) == 0 {
		return fmt.Errorf("list parameters: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "parameters", len(parameters), err)

	rows := make([][]string, 0, len(parameters))
	for _, parameter := range parameters {
		rows = append(rows, []string{
			cliutil.PointerToString(parameter.Name),
			string(parameter.Type),
			string(parameter.Tier),
			fmt.Sprintf("%d", parameter.Version),
			formatTime(parameter.LastModifiedDate),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list parameters", []string{"name", "type", "tier", "version", "last_modified"}, rows, err)
}

func parameterPages(client API, prefix string) awsutilsaws.PageFetcher[ssmtypes.ParameterMetadata, string] {
	var filters []ssmtypes.ParameterStringFilter
	if prefix != "" {
		filters = []ssmtypes.ParameterStringFilter{{
			Key:    cliutil.Ptr("Name"),
			Option: cliutil.Ptr("BeginsWith"),
			Values: []string{prefix},
		}}
	}

	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[ssmtypes.ParameterMetadata, string], error) {
		out, err := client.DescribeParameters(ctx, &ssm.DescribeParametersInput{
			ParameterFilters: filters,
			NextToken:        token,
		})
		if err != nil {
			return awsutilsaws.PageResult[ssmtypes.ParameterMetadata, string]{}, err
		}
		return awsutilsaws.PageResult[ssmtypes.ParameterMetadata, string]{
			Items:     out.Parameters,
			NextToken: awsutilsaws.StringToken(out.NextToken),
		}, nil
	}
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
