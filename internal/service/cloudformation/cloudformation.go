package cloudformation

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cloudformationtypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

type API interface {
	ListStacks(context.Context, *cloudformation.ListStacksInput, ...func(*cloudformation.Options)) (*cloudformation.ListStacksOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return cloudformation.NewFromConfig(cfg)
}

func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("cloudformation", "Inspect CloudFormation stacks")
	cmd.AddCommand(newListStacksCommand())
	return cmd
}

func newListStacksCommand() *cobra.Command {
	var statuses []string
	var includeNested bool
	var includeDeleted bool

	cmd := &cobra.Command{
		Use:   "list-stacks",
		Short: "List CloudFormation stacks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListStacks(cmd, statuses, includeNested, includeDeleted)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only list stacks in these statuses (e.g. CREATE_COMPLETE,UPDATE_COMPLETE)")
	cmd.Flags().BoolVar(&includeNested, "include-nested", false, "Include nested stacks")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Include DELETE_COMPLETE stacks when no --status is set")

	return cmd
}

func runListStacks(cmd *cobra.Command, rawStatuses []string, includeNested, includeDeleted bool) error {
	statuses, err := parseStatuses(rawStatuses)
	if err != nil {
		return err
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	stacks, err := cliutil.Collect(cmd, runtime, stackPages(client, statuses))
	if err != nil && len(stacks) == 0 {
		return fmt.Errorf("list stacks: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "stack summaries", len(stacks), err)

	rows := make([][]string, 0, len(stacks))
	for _, stack := range stacks {
		if !includeNested && stack.ParentId != nil {
			continue
		}
		if len(statuses) == 0 && !includeDeleted && stack.StackStatus == cloudformationtypes.StackStatusDeleteComplete {
			continue
		}
		rows = append(rows, []string{
			cliutil.PointerToString(stack.StackName),
			string(stack.StackStatus),
			formatTime(stack.CreationTime),
			formatTime(stack.LastUpdatedTime),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list stacks", []string{"stack_name", "status", "created_at", "updated_at"}, rows, err)
}

func stackPages(client API, statuses []cloudformationtypes.StackStatus) awsutilsaws.PageFetcher[cloudformationtypes.StackSummary, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[cloudformationtypes.StackSummary, string], error) {
		out, err := client.ListStacks(ctx, &cloudformation.ListStacksInput{
			NextToken:         token,
			StackStatusFilter: statuses,
		})
		if err != nil {
			return awsutilsaws.PageResult[cloudformationtypes.StackSummary, string]{}, err
		}
		return awsutilsaws.PageResult[cloudformationtypes.StackSummary, string]{
			Items:     out.StackSummaries,
			NextToken: awsutilsaws.StringToken(out.NextToken),
		}, nil
	}
}

func parseStatuses(raw []string) ([]cloudformationtypes.StackStatus, error) {
	known := make(map[string]struct{})
	for _, status := range cloudformationtypes.StackStatus("").Values() {
		known[string(status)] = struct{}{}
	}

	statuses := make([]cloudformationtypes.StackStatus, 0, len(raw))
	for _, item := range raw {
		status := strings.ToUpper(strings.TrimSpace(item))
		if status == "" {
			continue
		}
		if _, ok := known[status]; !ok {
			return nil, fmt.Errorf("unknown stack status %q", item)
		}
		statuses = append(statuses, cloudformationtypes.StackStatus(status))
	}
	return statuses, nil
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
