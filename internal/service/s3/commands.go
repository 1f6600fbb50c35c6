package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

func newListBucketsCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list-buckets",
		Short: "List every S3 bucket in the account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListBuckets(cmd, prefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list buckets whose name starts with this prefix")

	return cmd
}

func newListObjectsCommand() *cobra.Command {
	var bucket string
	var prefix string

	cmd := &cobra.Command{
		Use:   "list-objects",
		Short: "List every object in a bucket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListObjects(cmd, bucket, prefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&bucket, "bucket-name", "", "Bucket name")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix filter")

	return cmd
}

func runListBuckets(cmd *cobra.Command, prefix string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	buckets, err := cliutil.Collect(cmd, runtime, bucketPages(client, prefix))
	if err != nil && len(buckets) == 0 {
		runtime.Logger.Error("list buckets failed", "error", err)
		return fmt.Errorf("list buckets: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "S3 buckets", len(buckets), err)

	rows := make([][]string, 0, len(buckets))
	for _, bucket := range buckets {
		created := ""
		if bucket.CreationDate != nil {
			created = bucket.CreationDate.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			cliutil.PointerToString(bucket.Name),
			cliutil.PointerToString(bucket.BucketRegion),
			created,
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list buckets", []string{"bucket", "region", "created"}, rows, err)
}

func runListObjects(cmd *cobra.Command, bucket, prefix string) error {
	if strings.TrimSpace(bucket) == "" {
		return fmt.Errorf("--bucket-name is required")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	objects, err := cliutil.Collect(cmd, runtime, objectPages(client, bucket, prefix))
	if err != nil && len(objects) == 0 {
		runtime.Logger.Error("list objects failed", "bucket", bucket, "error", err)
		return fmt.Errorf("list objects: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "objects", len(objects), err, "bucket", bucket)

	rows := make([][]string, 0, len(objects))
	for _, object := range objects {
		lastModified := ""
		if object.LastModified != nil {
			lastModified = object.LastModified.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			objectKey(object),
			fmt.Sprintf("%d", objectSize(object)),
			lastModified,
			string(object.StorageClass),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list objects", []string{"key", "size_bytes", "last_modified", "storage_class"}, rows, err)
}

func bucketPages(client API, prefix string) awsutilsaws.PageFetcher[s3types.Bucket, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[s3types.Bucket, string], error) {
		input := &s3.ListBucketsInput{ContinuationToken: token}
		if strings.TrimSpace(prefix) != "" {
			input.Prefix = cliutil.Ptr(prefix)
		}

		out, err := client.ListBuckets(ctx, input)
		if err != nil {
			return awsutilsaws.PageResult[s3types.Bucket, string]{}, err
		}

		return awsutilsaws.PageResult[s3types.Bucket, string]{
			Items:     out.Buckets,
			NextToken: awsutilsaws.StringToken(out.ContinuationToken),
		}, nil
	}
}

func objectPages(client API, bucket, prefix string) awsutilsaws.PageFetcher[s3types.Object, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[s3types.Object, string], error) {
		input := &s3.ListObjectsV2Input{
			Bucket:            cliutil.Ptr(bucket),
			ContinuationToken: token,
		}
		if strings.TrimSpace(prefix) != "" {
			input.Prefix = cliutil.Ptr(prefix)
		}

		out, err := client.ListObjectsV2(ctx, input)
		if err != nil {
			return awsutilsaws.PageResult[s3types.Object, string]{}, err
		}

		next := awsutilsaws.StringToken(out.NextContinuationToken)
		if !cliutil.PointerToBool(out.IsTruncated) {
			next = nil
		}

		return awsutilsaws.PageResult[s3types.Object, string]{
			Items:     out.Contents,
			NextToken: next,
		}, nil
	}
}
