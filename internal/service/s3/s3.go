package s3

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the S3 client used by this package.
type API interface {
	CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	ListBuckets(context.Context, *s3.ListBucketsInput, ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return s3.NewFromConfig(cfg)
}
var newUUID = uuid.NewString

// Files larger than one part are sent as a multipart upload.
var (
	uploadPartSize    int64 = manager.DefaultUploadPartSize
	uploadConcurrency       = manager.DefaultUploadConcurrency
)

const (
	actionWouldCreate = "would-create"
	actionCreated     = "created"
)

// NewCommand returns the s3 service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("s3", "Manage S3 resources")
	cmd.AddCommand(newCreateBucketCommand())
	cmd.AddCommand(newUploadFileCommand())
	cmd.AddCommand(newListBucketsCommand())
	cmd.AddCommand(newListObjectsCommand())
	return cmd
}

func newCreateBucketCommand() *cobra.Command {
	var bucket string
	var generatePrefix string

	cmd := &cobra.Command{
		Use:   "create-bucket",
		Short: "Create an S3 bucket in the selected region",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateBucket(cmd, bucket, generatePrefix)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&bucket, "bucket-name", "", "Bucket name")
	cmd.Flags().StringVar(&generatePrefix, "generate-name", "", "Generate a unique bucket name with this prefix")

	return cmd
}

func newUploadFileCommand() *cobra.Command {
	var filePath string
	var bucket string
	var key string

	cmd := &cobra.Command{
		Use:   "upload-file",
		Short: "Upload a local file to an S3 bucket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUploadFile(cmd, filePath, bucket, key)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&filePath, "file", "", "Path of the local file to upload")
	cmd.Flags().StringVar(&bucket, "bucket-name", "", "Target bucket name")
	cmd.Flags().StringVar(&key, "key", "", "Object key (default: the file's base name)")

	return cmd
}

func runCreateBucket(cmd *cobra.Command, bucket, generatePrefix string) error {
	bucket = strings.TrimSpace(bucket)
	generatePrefix = strings.TrimSpace(generatePrefix)
	switch {
	case bucket == "" && generatePrefix == "":
		return fmt.Errorf("set one of --bucket-name or --generate-name")
	case bucket != "" && generatePrefix != "":
		return fmt.Errorf("set either --bucket-name or --generate-name, not both")
	case generatePrefix != "":
		bucket = generateBucketName(generatePrefix)
	}

	runtime, cfg, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	action := actionWouldCreate
	if !runtime.Options.DryRun {
		action = cliutil.ActionPending
	}

	headers := []string{"bucket", "region", "action"}
	rows := [][]string{{bucket, displayRegion(cfg.Region), action}}

	return cliutil.RunActionPlan(cmd, runtime, cliutil.ActionPlan{
		Headers:       headers,
		Rows:          rows,
		ActionColumn:  2,
		ConfirmPrompt: fmt.Sprintf("Create S3 bucket %s in %s", bucket, displayRegion(cfg.Region)),
		Execute: func(int) string {
			if _, createErr := client.CreateBucket(cmd.Context(), createBucketInput(bucket, cfg.Region)); createErr != nil {
				runtime.Logger.Error("create bucket failed", "bucket", bucket, "error", createErr)
				return cliutil.FailedActionMessage(awsutilsaws.FormatUserError(createErr))
			}
			runtime.Logger.Info("created bucket", "bucket", bucket, "region", displayRegion(cfg.Region))
			return actionCreated
		},
	})
}

func runUploadFile(cmd *cobra.Command, filePath, bucket, key string) error {
	if strings.TrimSpace(filePath) == "" {
		return fmt.Errorf("--file is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return fmt.Errorf("--bucket-name is required")
	}
	if strings.TrimSpace(key) == "" {
		key = filepath.Base(filePath)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", filePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", filePath)
	}

	contentType, err := detectContentType(filePath)
	if err != nil {
		return err
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	headers := []string{"status", "bucket", "key", "content_type", "size_bytes"}
	size := fmt.Sprintf("%d", info.Size())
	if runtime.Options.DryRun {
		return cliutil.WriteDataset(cmd, runtime, headers, [][]string{{"would-upload", bucket, key, contentType, size}})
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %s: %w", filePath, err)
	}
	defer f.Close()

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = uploadPartSize
		u.Concurrency = uploadConcurrency
	})
	result, err := uploader.Upload(cmd.Context(), &s3.PutObjectInput{
		Bucket:      cliutil.Ptr(bucket),
		Key:         cliutil.Ptr(key),
		Body:        f,
		ContentType: cliutil.Ptr(contentType),
	})
	if err != nil {
		runtime.Logger.Error("upload failed", "file", filePath, "bucket", bucket, "key", key, "error", err)
		return fmt.Errorf("upload %s to s3://%s/%s: %s", filePath, bucket, key, awsutilsaws.FormatUserError(err))
	}
	runtime.Logger.Info("uploaded file", "file", filePath, "bucket", bucket, "key", key, "parts", max(len(result.CompletedParts), 1))

	return cliutil.WriteDataset(cmd, runtime, headers, [][]string{{"success", bucket, key, contentType, size}})
}
