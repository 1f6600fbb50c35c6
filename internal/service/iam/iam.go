package iam

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the IAM client used by this package.
type API interface {
	ListAccessKeys(context.Context, *iam.ListAccessKeysInput, ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error)
	ListUsers(context.Context, *iam.ListUsersInput, ...func(*iam.Options)) (*iam.ListUsersOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return iam.NewFromConfig(cfg)
}

// NewCommand returns the iam service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("iam", "Inspect IAM resources")

	cmd.AddCommand(newListUsersCommand())
	cmd.AddCommand(newListAccessKeysCommand())

	return cmd
}

func newListUsersCommand() *cobra.Command {
	var pathPrefix string

	cmd := &cobra.Command{
		Use:   "list-users",
		Short: "List IAM users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListUsers(cmd, pathPrefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&pathPrefix, "path-prefix", "", "Only list users under this path, for example /engineering/")

	return cmd
}

func newListAccessKeysCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "list-access-keys",
		Short: "List access keys for an IAM user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListAccessKeys(cmd, username)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&username, "username", "", "IAM username")

	return cmd
}

func runListUsers(cmd *cobra.Command, pathPrefix string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	users, err := cliutil.Collect(cmd, runtime, userPages(client, strings.TrimSpace(pathPrefix)))
	if err != nil && len(users) == 0 {
		return fmt.Errorf("list users: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "IAM users", len(users), err)

	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{
			cliutil.PointerToString(user.UserName),
			cliutil.PointerToString(user.UserId),
			cliutil.PointerToString(user.Path),
			formatTime(user.CreateDate),
			formatTime(user.PasswordLastUsed),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list users", []string{"username", "user_id", "path", "created_at", "password_last_used"}, rows, err)
}

func runListAccessKeys(cmd *cobra.Command, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("--username is required")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	keys, err := cliutil.Collect(cmd, runtime, accessKeyPages(client, username))
	if err != nil && len(keys) == 0 {
		return fmt.Errorf("list access keys for %s: %s", username, awsutilsaws.FormatUserError(err))
	}

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{
			cliutil.PointerToString(key.UserName),
			cliutil.PointerToString(key.AccessKeyId),
			string(key.Status),
			formatTime(key.CreateDate),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list access keys", []string{"username", "access_key_id", "status", "created_at"}, rows, err)
}

// IAM signals more pages with IsTruncated; Marker alone is not authoritative.
func markerToken(truncated bool, marker *string) *string {
	if !truncated {
		return nil
	}
	return awsutilsaws.StringToken(marker)
}

func userPages(client API, pathPrefix string) awsutilsaws.PageFetcher[iamtypes.User, string] {
	return func(ctx context.Context, marker *string) (awsutilsaws.PageResult[iamtypes.User, string], error) {
		input := &iam.ListUsersInput{Marker: marker}
		if pathPrefix != "" {
			input.PathPrefix = cliutil.Ptr(pathPrefix)
		}

		out, err := client.ListUsers(ctx, input)
		if err != nil {
			return awsutilsaws.PageResult[iamtypes.User, string]{}, err
		}
		return awsutilsaws.PageResult[iamtypes.User, string]{
			Items:     out.Users,
			NextToken: markerToken(out.IsTruncated, out.Marker),
		}, nil
	}
}

func accessKeyPages(client API, username string) awsutilsaws.PageFetcher[iamtypes.AccessKeyMetadata, string] {
	return func(ctx context.Context, marker *string) (awsutilsaws.PageResult[iamtypes.AccessKeyMetadata, string], error) {
		out, err := client.ListAccessKeys(ctx, &iam.ListAccessKeysInput{UserName: cliutil.Ptr(username), Marker: marker})
		if err != nil {
			return awsutilsaws.PageResult[iamtypes.AccessKeyMetadata, string]{}, err
		}
		return awsutilsaws.PageResult[iamtypes.AccessKeyMetadata, string]{
			Items:     out.AccessKeyMetadata,
			NextToken: markerToken(out.IsTruncated, out.Marker),
		}, nil
	}
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
