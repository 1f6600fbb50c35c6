package cloudwatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cloudwatchlogstypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the CloudWatch Logs client used by this package.
type API interface {
	DescribeLogGroups(context.Context, *cloudwatchlogs.DescribeLogGroupsInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return cloudwatchlogs.NewFromConfig(cfg)
}

// NewCommand returns the cloudwatch service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("cloudwatch", "Inspect CloudWatch Logs resources")

	cmd.AddCommand(newCountLogGroupsCommand())
	cmd.AddCommand(newListLogGroupsCommand())

	return cmd
}

func newCountLogGroupsCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "count-log-groups",
		Short: "Count CloudWatch log groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCountLogGroups(cmd, prefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only count log groups whose name starts with this prefix")

	return cmd
}

func newListLogGroupsCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list-log-groups",
		Short: "List log groups with creation details, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListLogGroups(cmd, prefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list log groups whose name starts with this prefix")

	return cmd
}

func runCountLogGroups(cmd *cobra.Command, prefix string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	// Counts are all-or-error regardless of --allow-partial.
	runtime.Options.AllowPartial = false
	groups, err := cliutil.Collect(cmd, runtime, logGroupPages(client, prefix))
	if err != nil {
		return fmt.Errorf("count log groups: %s", awsutilsaws.FormatUserError(err))
	}

	rows := [][]string{{"total_log_groups", fmt.Sprintf("%d", len(groups))}}
	return cliutil.WriteDataset(cmd, runtime, []string{"metric", "value"}, rows)
}

func runListLogGroups(cmd *cobra.Command, prefix string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	groups, err := cliutil.Collect(cmd, runtime, logGroupPages(client, prefix))
	if err != nil && len(groups) == 0 {
		return fmt.Errorf("list log groups: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "log groups", len(groups), err)

	sort.SliceStable(groups, func(i, j int) bool {
		left := logGroupCreatedAt(groups[i])
		right := logGroupCreatedAt(groups[j])
		if left.Equal(right) {
			return cliutil.PointerToString(groups[i].LogGroupName) < cliutil.PointerToString(groups[j].LogGroupName)
		}
		return left.After(right)
	})

	now := time.Now().UTC()
	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		createdAt := logGroupCreatedAt(group)
		ageDays := 0
		createdAtText := "unknown"
		if !createdAt.IsZero() {
			ageDays = int(now.Sub(createdAt).Hours() / 24)
			createdAtText = createdAt.Format(time.RFC3339)
		}

		rows = append(rows, []string{
			cliutil.PointerToString(group.LogGroupName),
			createdAtText,
			fmt.Sprintf("%d", ageDays),
			retentionToString(group.RetentionInDays),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list log groups", []string{"log_group", "created_at", "age_days", "retention_days"}, rows, err)
}

func logGroupPages(client API, prefix string) awsutilsaws.PageFetcher[cloudwatchlogstypes.LogGroup, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[cloudwatchlogstypes.LogGroup, string], error) {
		input := &cloudwatchlogs.DescribeLogGroupsInput{NextToken: token}
		if strings.TrimSpace(prefix) != "" {
			input.LogGroupNamePrefix = cliutil.Ptr(prefix)
		}

		out, err := client.DescribeLogGroups(ctx, input)
		if err != nil {
			return awsutilsaws.PageResult[cloudwatchlogstypes.LogGroup, string]{}, err
		}

		return awsutilsaws.PageResult[cloudwatchlogstypes.LogGroup, string]{
			Items:     out.LogGroups,
			NextToken: awsutilsaws.StringToken(out.NextToken),
		}, nil
	}
}

func logGroupCreatedAt(group cloudwatchlogstypes.LogGroup) time.Time {
	if group.CreationTime == nil {
		return time.Time{}
	}
	return time.UnixMilli(*group.CreationTime).UTC()
}

func retentionToString(value *int32) string {
	if value == nil {
		return "not_set"
	}
	return fmt.Sprintf("%d", *value)
}
