package ecs

import (
	"context"
	"fmt"
	"slices"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

type API interface {
	ListClusters(context.Context, *ecs.ListClustersInput, ...func(*ecs.Options)) (*ecs.ListClustersOutput, error)
	ListTaskDefinitions(context.Context, *ecs.ListTaskDefinitionsInput, ...func(*ecs.Options)) (*ecs.ListTaskDefinitionsOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return ecs.NewFromConfig(cfg)
}

func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("ecs", "Inspect ECS resources")

	cmd.AddCommand(newListClustersCommand())
	cmd.AddCommand(newListTaskDefinitionsCommand())

	return cmd
}

func newListClustersCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "list-clusters",
		Short:        "List ECS cluster ARNs",
		RunE:         runListClusters,
		SilenceUsage: true,
	}
}

func newListTaskDefinitionsCommand() *cobra.Command {
	var status string
	var familyPrefix string

	cmd := &cobra.Command{
		Use:   "list-task-definitions",
		Short: "List ECS task definition ARNs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListTaskDefinitions(cmd, status, familyPrefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&status, "status", "ACTIVE", "Task definition status: ACTIVE, INACTIVE or DELETE_IN_PROGRESS")
	cmd.Flags().StringVar(&familyPrefix, "family-prefix", "", "Only list task definitions whose family begins with this value")

	return cmd
}

func runListClusters(cmd *cobra.Command, _ []string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	arns, err := cliutil.Collect(cmd, runtime, func(ctx context.Context, nextToken *string) (awsutilsaws.PageResult[string, string], error) {
		page, listErr := client.ListClusters(ctx, &ecs.ListClustersInput{NextToken: nextToken})
		if listErr != nil {
			return awsutilsaws.PageResult[string, string]{}, listErr
		}
		return awsutilsaws.PageResult[string, string]{
			Items:     page.ClusterArns,
			NextToken: awsutilsaws.StringToken(page.NextToken),
		}, nil
	})
	if err != nil && len(arns) == 0 {
		return fmt.Errorf("list clusters: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "ECS clusters", len(arns), err)

	rows := make([][]string, 0, len(arns))
	for _, arn := range arns {
		rows = append(rows, []string{resourceName(arn), arn})
	}

	return cliutil.WriteCollected(cmd, runtime, "list clusters", []string{"cluster_name", "cluster_arn"}, rows, err)
}

func runListTaskDefinitions(cmd *cobra.Command, rawStatus, familyPrefix string) error {
	status := ecstypes.TaskDefinitionStatus(strings.ToUpper(strings.TrimSpace(rawStatus)))
	if !slices.Contains(ecstypes.TaskDefinitionStatus("").Values(), status) {
		return fmt.Errorf("invalid --status %q", rawStatus)
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	familyPrefix = strings.TrimSpace(familyPrefix)
	arns, err := cliutil.Collect(cmd, runtime, func(ctx context.Context, nextToken *string) (awsutilsaws.PageResult[string, string], error) {
		input := &ecs.ListTaskDefinitionsInput{NextToken: nextToken, Status: status}
		if familyPrefix != "" {
			input.FamilyPrefix = cliutil.Ptr(familyPrefix)
		}

		page, listErr := client.ListTaskDefinitions(ctx, input)
		if listErr != nil {
			return awsutilsaws.PageResult[string, string]{}, listErr
		}
		return awsutilsaws.PageResult[string, string]{
			Items:     page.TaskDefinitionArns,
			NextToken: awsutilsaws.StringToken(page.NextToken),
		}, nil
	})
	if err != nil && len(arns) == 0 {
		return fmt.Errorf("list task definitions: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "task definitions", len(arns), err)

	rows := make([][]string, 0, len(arns))
	for _, arn := range arns {
		rows = append(rows, []string{resourceName(arn), string(status), arn})
	}

	return cliutil.WriteCollected(cmd, runtime, "list task definitions", []string{"task_definition", "status", "arn"}, rows, err)
}

// resourceName returns the part of an ARN after the last "/".
func resourceName(arn string) string {
	if idx := strings.LastIndex(arn, "/"); idx >= 0 {
		return arn[idx+1:]
	}
	return arn
}
