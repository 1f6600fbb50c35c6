package lambda

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the Lambda client used by this package.
type API interface {
	ListFunctions(context.Context, *lambda.ListFunctionsInput, ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return lambda.NewFromConfig(cfg)
}

// NewCommand returns the lambda service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("lambda", "Manage Lambda functions")
	cmd.AddCommand(newListFunctionsCommand())
	return cmd
}

func newListFunctionsCommand() *cobra.Command {
	var pageSize int32

	cmd := &cobra.Command{
		Use:   "list-functions",
		Short: "List every Lambda function in the selected region",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListFunctions(cmd, pageSize)
		},
		SilenceUsage: true,
	}
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "Functions requested per ListFunctions call (1-50, 0 = service default)")

	return cmd
}

func runListFunctions(cmd *cobra.Command, pageSize int32) error {
	if pageSize < 0 || pageSize > 50 {
		return fmt.Errorf("--page-size must be between 1 and 50")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	functions, err := cliutil.Collect(cmd, runtime, functionPages(client, pageSize))
	if err != nil && len(functions) == 0 {
		runtime.Logger.Error("error listing Lambda functions", "error", err)
		return fmt.Errorf("list functions: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "Lambda functions", len(functions), err)

	rows := make([][]string, 0, len(functions))
	for _, fn := range functions {
		rows = append(rows, []string{
			cliutil.PointerToString(fn.FunctionName),
			string(fn.Runtime),
			fmt.Sprintf("%d", cliutil.PointerToInt32(fn.MemorySize)),
			cliutil.PointerToString(fn.LastModified),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list functions", []string{"name", "runtime", "memory_mb", "last_modified"}, rows, err)
}

// functionPages walks ListFunctions with the Marker/NextMarker pair.
func functionPages(client API, pageSize int32) awsutilsaws.PageFetcher[lambdatypes.FunctionConfiguration, string] {
	return func(ctx context.Context, marker *string) (awsutilsaws.PageResult[lambdatypes.FunctionConfiguration, string], error) {
		input := &lambda.ListFunctionsInput{Marker: marker}
		if pageSize > 0 {
			input.MaxItems = cliutil.Ptr(pageSize)
		}

		out, err := client.ListFunctions(ctx, input)
		if err != nil {
			return awsutilsaws.PageResult[lambdatypes.FunctionConfiguration, string]{}, err
		}

		return awsutilsaws.PageResult[lambdatypes.FunctionConfiguration, string]{
			Items:     out.Functions,
			NextToken: awsutilsaws.StringToken(out.NextMarker),
		}, nil
	}
}
