package s3

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// defaultRegion is the only region where CreateBucket must not send a LocationConstraint.
const defaultRegion = "us-east-1"

func createBucketInput(bucket, region string) *s3.CreateBucketInput {
	input := &s3.CreateBucketInput{Bucket: cliutil.Ptr(bucket)}
	if region != "" && region != defaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}
	return input
}

func displayRegion(region string) string {
	if region == "" {
		return defaultRegion
	}
	return region
}

// generateBucketName appends a UUID to prefix, lowercased to satisfy bucket naming rules.
func generateBucketName(prefix string) string {
	name := strings.ToLower(strings.TrimSuffix(prefix, "-")) + "-" + newUUID()
	if len(name) > 63 {
		name = name[:63]
	}
	return strings.TrimSuffix(name, "-")
}

func detectContentType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect content type of %s: %w", path, err)
	}
	return mtype.String(), nil
}

func objectKey(object s3types.Object) string {
	return cliutil.PointerToString(object.Key)
}

func objectSize(object s3types.Object) int64 {
	if object.Size == nil {
		return 0
	}
	return *object.Size
}
