package ec2

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API defines the subset of EC2 operations used by this package.
type API interface {
	DescribeInstances(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	StartInstances(context.Context, *ec2.StartInstancesInput, ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return ec2.NewFromConfig(cfg)
}

const actionWouldStart = "would-start"

// NewCommand returns the top-level ec2 cobra command with all subcommands.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("ec2", "Manage EC2 resources")

	cmd.AddCommand(newStartInstancesCommand())
	cmd.AddCommand(newListInstancesCommand())

	return cmd
}

func newStartInstancesCommand() *cobra.Command {
	var instanceIDs []string

	cmd := &cobra.Command{
		Use:   "start-instances",
		Short: "Start stopped EC2 instances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStartInstances(cmd, instanceIDs)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringSliceVar(&instanceIDs, "instance-ids", nil, "Instance IDs to start (comma-separated or repeated)")

	return cmd
}

func runStartInstances(cmd *cobra.Command, rawIDs []string) error {
	instanceIDs := normalizeInstanceIDs(rawIDs)
	if len(instanceIDs) == 0 {
		return fmt.Errorf("--instance-ids is required")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	action := actionWouldStart
	if !runtime.Options.DryRun {
		action = cliutil.ActionPending
	}

	rows := make([][]string, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		rows = append(rows, []string{id, action})
	}

	return cliutil.RunActionPlan(cmd, runtime, cliutil.ActionPlan{
		Headers:       []string{"instance_id", "action"},
		Rows:          rows,
		ActionColumn:  1,
		ConfirmPrompt: fmt.Sprintf("Start %d EC2 instance(s)", len(instanceIDs)),
		Execute: func(rowIndex int) string {
			id := instanceIDs[rowIndex]
			out, startErr := client.StartInstances(cmd.Context(), &ec2.StartInstancesInput{InstanceIds: []string{id}})
			if startErr != nil {
				runtime.Logger.Error("start instance failed", "instance_id", id, "error", startErr)
				return cliutil.FailedActionMessage(awsutilsaws.FormatUserError(startErr))
			}

			state := "unknown"
			for _, change := range out.StartingInstances {
				if cliutil.PointerToString(change.InstanceId) == id && change.CurrentState != nil {
					state = string(change.CurrentState.Name)
				}
			}
			runtime.Logger.Info("started instance", "instance_id", id, "state", state)
			return "started:" + state
		},
	})
}

func normalizeInstanceIDs(raw []string) []string {
	ids := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids
}
