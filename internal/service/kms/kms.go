package kms

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the KMS client used by this package.
type API interface {
	DescribeKey(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	ListKeys(context.Context, *kms.ListKeysInput, ...func(*kms.Options)) (*kms.ListKeysOutput, error)
	ListResourceTags(context.Context, *kms.ListResourceTagsInput, ...func(*kms.Options)) (*kms.ListResourceTagsOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return kms.NewFromConfig(cfg)
}

// NewCommand returns the kms service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("kms", "Inspect KMS resources")
	cmd.AddCommand(newListKeysCommand())
	return cmd
}

func newListKeysCommand() *cobra.Command {
	var details bool
	var customerOnly bool
	var tagFilter string

	cmd := &cobra.Command{
		Use:   "list-keys",
		Short: "List KMS keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListKeys(cmd, details, customerOnly, tagFilter)
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&details, "details", false, "Describe every key (manager, state, creation date)")
	cmd.Flags().BoolVar(&customerOnly, "customer-managed", false, "Only list customer-managed keys (implies --details)")
	cmd.Flags().StringVar(&tagFilter, "filter-tag", "", "Tag filter in KEY=VALUE form (implies --details)")

	return cmd
}

func runListKeys(cmd *cobra.Command, details, customerOnly bool, tagFilter string) error {
	var tagKey, tagValue string
	if strings.TrimSpace(tagFilter) != "" {
		var err error
		tagKey, tagValue, err = cliutil.ParseTagFilter(tagFilter)
		if err != nil {
			return err
		}
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	if !details && !customerOnly && tagKey == "" {
		keys, listErr := cliutil.Collect(cmd, runtime, keyPages(client))
		if listErr != nil && len(keys) == 0 {
			return fmt.Errorf("list keys: %s", awsutilsaws.FormatUserError(listErr))
		}
		cliutil.LogRetrieved(runtime, "KMS keys", len(keys), listErr)

		rows := make([][]string, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, []string{cliutil.PointerToString(key.KeyId), cliutil.PointerToString(key.KeyArn)})
		}
		return cliutil.WriteCollected(cmd, runtime, "list keys", []string{"key_id", "key_arn"}, rows, listErr)
	}

	// Describing keys issues one call per key, so the listing underneath stays all-or-error.
	runtime.Options.AllowPartial = false

	keys, err := cliutil.Collect(cmd, runtime, keyPages(client))
	if err != nil {
		return fmt.Errorf("list keys: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "KMS keys", len(keys), nil)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		keyID := cliutil.PointerToString(key.KeyId)
		if keyID == "" {
			continue
		}

		out, describeErr := client.DescribeKey(cmd.Context(), &kms.DescribeKeyInput{KeyId: cliutil.Ptr(keyID)})
		if describeErr != nil {
			return fmt.Errorf("describe key %s: %s", keyID, awsutilsaws.FormatUserError(describeErr))
		}
		if out.KeyMetadata == nil {
			continue
		}
		metadata := *out.KeyMetadata
		if customerOnly && metadata.KeyManager != kmstypes.KeyManagerTypeCustomer {
			continue
		}

		if tagKey != "" {
			matches, tagErr := keyMatchesTag(cmd, runtime, client, keyID, tagKey, tagValue)
			if tagErr != nil {
				return fmt.Errorf("list tags for key %s: %s", keyID, awsutilsaws.FormatUserError(tagErr))
			}
			if !matches {
				continue
			}
		}

		rows = append(rows, []string{
			keyID,
			string(metadata.KeyManager),
			string(metadata.KeyState),
			string(metadata.KeySpec),
			formatTime(metadata.CreationDate),
			cliutil.PointerToString(metadata.Description),
		})
	}

	return cliutil.WriteDataset(cmd, runtime, []string{"key_id", "manager", "state", "spec", "created_at", "description"}, rows)
}

// KMS signals more pages with Truncated; NextMarker alone is not authoritative.
func markerToken(truncated bool, marker *string) *string {
	if !truncated {
		return nil
	}
	return awsutilsaws.StringToken(marker)
}

func keyPages(client API) awsutilsaws.PageFetcher[kmstypes.KeyListEntry, string] {
	return func(ctx context.Context, marker *string) (awsutilsaws.PageResult[kmstypes.KeyListEntry, string], error) {
		out, err := client.ListKeys(ctx, &kms.ListKeysInput{Marker: marker})
		if err != nil {
			return awsutilsaws.PageResult[kmstypes.KeyListEntry, string]{}, err
		}
		return awsutilsaws.PageResult[kmstypes.KeyListEntry, string]{
			Items:     out.Keys,
			NextToken: markerToken(out.Truncated, out.NextMarker),
		}, nil
	}
}

func keyMatchesTag(cmd *cobra.Command, runtime cliutil.CommandRuntime, client API, keyID, tagKey, tagValue string) (bool, error) {
	tags, err := cliutil.Collect(cmd, runtime, func(ctx context.Context, marker *string) (awsutilsaws.PageResult[kmstypes.Tag, string], error) {
		out, listErr := client.ListResourceTags(ctx, &kms.ListResourceTagsInput{KeyId: cliutil.Ptr(keyID), Marker: marker})
		if listErr != nil {
			return awsutilsaws.PageResult[kmstypes.Tag, string]{}, listErr
		}
		return awsutilsaws.PageResult[kmstypes.Tag, string]{
			Items:     out.Tags,
			NextToken: markerToken(out.Truncated, out.NextMarker),
		}, nil
	})
	if err != nil {
		return false, err
	}

	return cliutil.HasTag(tags, tagKey, tagValue, func(tag kmstypes.Tag) (*string, *string) {
		return tag.TagKey, tag.TagValue
	}), nil
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
