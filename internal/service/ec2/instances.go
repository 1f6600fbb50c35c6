package ec2

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

func newListInstancesCommand() *cobra.Command {
	var state string
	var tagFilter string

	cmd := &cobra.Command{
		Use:   "list-instances",
		Short: "List EC2 instances in the selected region",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListInstances(cmd, state, tagFilter)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&state, "state", "", "Only list instances in this state (pending, running, stopping, stopped, ...)")
	cmd.Flags().StringVar(&tagFilter, "filter-tag", "", "Tag filter in KEY=VALUE form")

	return cmd
}

func runListInstances(cmd *cobra.Command, state, tagFilter string) error {
	tagKey, tagValue, err := cliutil.ParseTagFilter(strings.TrimSpace(tagFilter))
	if err != nil {
		return err
	}

	filters := make([]ec2types.Filter, 0, 2)
	if strings.TrimSpace(state) != "" {
		filters = append(filters, ec2types.Filter{Name: cliutil.Ptr("instance-state-name"), Values: []string{strings.TrimSpace(state)}})
	}
	if tagKey != "" {
		filters = append(filters, ec2types.Filter{Name: cliutil.Ptr("tag:" + tagKey), Values: []string{tagValue}})
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	instances, err := cliutil.Collect(cmd, runtime, instancePages(client, filters))
	if err != nil && len(instances) == 0 {
		runtime.Logger.Error("describe instances failed", "error", err)
		return fmt.Errorf("list instances: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "EC2 instances", len(instances), err)

	rows := make([][]string, 0, len(instances))
	for _, instance := range instances {
		stateName := ""
		if instance.State != nil {
			stateName = string(instance.State.Name)
		}
		launchTime := ""
		if instance.LaunchTime != nil {
			launchTime = instance.LaunchTime.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			cliutil.PointerToString(instance.InstanceId),
			instanceName(instance.Tags),
			string(instance.InstanceType),
			stateName,
			cliutil.PointerToString(instance.PrivateIpAddress),
			launchTime,
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list instances",
		[]string{"instance_id", "name", "instance_type", "state", "private_ip", "launch_time"}, rows, err)
}

// instancePages flattens reservations so every page yields instances directly.
func instancePages(client API, filters []ec2types.Filter) awsutilsaws.PageFetcher[ec2types.Instance, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[ec2types.Instance, string], error) {
		input := &ec2.DescribeInstancesInput{NextToken: token}
		if len(filters) > 0 {
			input.Filters = filters
		}

		out, err := client.DescribeInstances(ctx, input)
		if err != nil {
			return awsutilsaws.PageResult[ec2types.Instance, string]{}, err
		}

		items := make([]ec2types.Instance, 0)
		for _, reservation := range out.Reservations {
			items = append(items, reservation.Instances...)
		}

		return awsutilsaws.PageResult[ec2types.Instance, string]{
			Items:     items,
			NextToken: awsutilsaws.StringToken(out.NextToken),
		}, nil
	}
}

func instanceName(tags []ec2types.Tag) string {
	name, _ := cliutil.TagValue(tags, "Name", func(tag ec2types.Tag) (*string, *string) { return tag.Key, tag.Value })
	return name
}
