package efs

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/efs"
	efstypes "github.com/aws/aws-sdk-go-v2/service/efs/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the EFS client used by this package.
type API interface {
	DescribeFileSystems(context.Context, *efs.DescribeFileSystemsInput, ...func(*efs.Options)) (*efs.DescribeFileSystemsOutput, error)
	DescribeMountTargets(context.Context, *efs.DescribeMountTargetsInput, ...func(*efs.Options)) (*efs.DescribeMountTargetsOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return efs.NewFromConfig(cfg)
}

// NewCommand returns the efs service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("efs", "Inspect EFS resources")

	cmd.AddCommand(newListFileSystemsCommand())
	cmd.AddCommand(newListMountTargetsCommand())

	return cmd
}

func newListFileSystemsCommand() *cobra.Command {
	var tagFilter string

	cmd := &cobra.Command{
		Use:   "list-file-systems",
		Short: "List EFS file systems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListFileSystems(cmd, tagFilter)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&tagFilter, "filter-tag", "", "Optional tag filter in KEY=VALUE form")

	return cmd
}

func newListMountTargetsCommand() *cobra.Command {
	var fileSystemID string

	cmd := &cobra.Command{
		Use:   "list-mount-targets",
		Short: "List mount targets of an EFS file system",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListMountTargets(cmd, fileSystemID)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&fileSystemID, "file-system-id", "", "EFS file system ID")

	return cmd
}

func runListFileSystems(cmd *cobra.Command, tagFilter string) error {
	tagKey, tagValue, err := cliutil.ParseTagFilter(tagFilter)
	if err != nil {
		return err
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	fileSystems, err := cliutil.Collect(cmd, runtime, func(ctx context.Context, marker *string) (awsutilsaws.PageResult[efstypes.FileSystemDescription, string], error) {
		page, listErr := client.DescribeFileSystems(ctx, &efs.DescribeFileSystemsInput{Marker: marker})
		if listErr != nil {
			return awsutilsaws.PageResult[efstypes.FileSystemDescription, string]{}, listErr
		}
		return awsutilsaws.PageResult[efstypes.FileSystemDescription, string]{
			Items:     page.FileSystems,
			NextToken: awsutilsaws.StringToken(page.NextMarker),
		}, nil
	})
	if err != nil && len(fileSystems) == 0 {
		return fmt.Errorf("list file systems: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "EFS file systems", len(fileSystems), err)

	rows := make([][]string, 0, len(fileSystems))
	for _, fileSystem := range fileSystems {
		if tagKey != "" && !cliutil.HasTag(fileSystem.Tags, tagKey, tagValue, efsTagKeyValue) {
			continue
		}

		size := ""
		if fileSystem.SizeInBytes != nil {
			size = fmt.Sprintf("%d", fileSystem.SizeInBytes.Value)
		}

		rows = append(rows, []string{
			cliutil.PointerToString(fileSystem.FileSystemId),
			cliutil.PointerToString(fileSystem.Name),
			string(fileSystem.LifeCycleState),
			size,
			fmt.Sprintf("%d", fileSystem.NumberOfMountTargets),
			formatTime(fileSystem.CreationTime),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list file systems", []string{"file_system_id", "name", "state", "size_bytes", "mount_targets", "created_at"}, rows, err)
}

func runListMountTargets(cmd *cobra.Command, fileSystemID string) error {
	fileSystemID = strings.TrimSpace(fileSystemID)
	if fileSystemID == "" {
		return fmt.Errorf("--file-system-id is required")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	mountTargets, err := cliutil.Collect(cmd, runtime, func(ctx context.Context, marker *string) (awsutilsaws.PageResult[efstypes.MountTargetDescription, string], error) {
		page, listErr := client.DescribeMountTargets(ctx, &efs.DescribeMountTargetsInput{FileSystemId: cliutil.Ptr(fileSystemID), Marker: marker})
		if listErr != nil {
			return awsutilsaws.PageResult[efstypes.MountTargetDescription, string]{}, listErr
		}
		return awsutilsaws.PageResult[efstypes.MountTargetDescription, string]{
			Items:     page.MountTargets,
			NextToken: awsutilsaws.StringToken(page.NextMarker),
		}, nil
	})
	if err != nil && len(mountTargets) == 0 {
		return fmt.Errorf("list mount targets for %s: %s", fileSystemID, awsutilsaws.FormatUserError(err))
	}

	rows := make([][]string, 0, len(mountTargets))
	for _, mountTarget := range mountTargets {
		rows = append(rows, []string{
			cliutil.PointerToString(mountTarget.MountTargetId),
			cliutil.PointerToString(mountTarget.SubnetId),
			cliutil.PointerToString(mountTarget.AvailabilityZoneName),
			cliutil.PointerToString(mountTarget.IpAddress),
			string(mountTarget.LifeCycleState),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list mount targets", []string{"mount_target_id", "subnet_id", "availability_zone", "ip_address", "state"}, rows, err)
}

func efsTagKeyValue(tag efstypes.Tag) (*string, *string) {
	return tag.Key, tag.Value
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
