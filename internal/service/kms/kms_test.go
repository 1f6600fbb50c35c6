package kms

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

type mockClient struct {
	describeKeyFn      func(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	listKeysFn         func(context.Context, *kms.ListKeysInput, ...func(*kms.Options)) (*kms.ListKeysOutput, error)
	listResourceTagsFn func(context.Context, *kms.ListResourceTagsInput, ...func(*kms.Options)) (*kms.ListResourceTagsOutput, error)
}

func (m *mockClient) DescribeKey(ctx context.Context, in *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
	if m.describeKeyFn == nil {
		return nil, errors.New("DescribeKey not mocked")
	}
	return m.describeKeyFn(ctx, in, optFns...)
}

func (m *mockClient) ListKeys(ctx context.Context, in *kms.ListKeysInput, optFns ...func(*kms.Options)) (*kms.ListKeysOutput, error) {
	if m.listKeysFn == nil {
		return nil, errors.New("ListKeys not mocked")
	}
	return m.listKeysFn(ctx, in, optFns...)
}

func (m *mockClient) ListResourceTags(ctx context.Context, in *kms.ListResourceTagsInput, optFns ...func(*kms.Options)) (*kms.ListResourceTagsOutput, error) {
	if m.listResourceTagsFn == nil {
		return nil, errors.New("ListResourceTags not mocked")
	}
	return m.listResourceTagsFn(ctx, in, optFns...)
}

func withMockDeps(t *testing.T, loader func(string, string) (awssdk.Config, error), nc func(awssdk.Config) API) {
	t.Helper()

	oldLoader := loadAWSConfig
	oldNewClient := newClient

	loadAWSConfig = loader
	newClient = nc

	t.Cleanup(func() {
		loadAWSConfig = oldLoader
		newClient = oldNewClient
	})
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := cliutil.NewTestRootCommand(NewCommand())
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func standardLoader(_, _ string) (awssdk.Config, error) {
	return awssdk.Config{Region: "us-east-1"}, nil
}

func twoPageKeys() func(context.Context, *kms.ListKeysInput, ...func(*kms.Options)) (*kms.ListKeysOutput, error) {
	return func(_ context.Context, in *kms.ListKeysInput, _ ...func(*kms.Options)) (*kms.ListKeysOutput, error) {
		if in.Marker == nil {
			return &kms.ListKeysOutput{
				Keys:       []kmstypes.KeyListEntry{{KeyId: cliutil.Ptr("key-aws"), KeyArn: cliutil.Ptr("arn:aws:kms:us-east-1:111111111111:key/key-aws")}},
				Truncated:  true,
				NextMarker: cliutil.Ptr("m1"),
			}, nil
		}
		return &kms.ListKeysOutput{
			Keys: []kmstypes.KeyListEntry{{KeyId: cliutil.Ptr("key-cmk"), KeyArn: cliutil.Ptr("arn:aws:kms:us-east-1:111111111111:key/key-cmk")}},
		}, nil
	}
}

func describeByID(_ context.Context, in *kms.DescribeKeyInput, _ ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
	manager := kmstypes.KeyManagerTypeAws
	if cliutil.PointerToString(in.KeyId) == "key-cmk" {
		manager = kmstypes.KeyManagerTypeCustomer
	}
	return &kms.DescribeKeyOutput{KeyMetadata: &kmstypes.KeyMetadata{
		KeyId:      in.KeyId,
		KeyManager: manager,
		KeyState:   kmstypes.KeyStateEnabled,
		KeySpec:    kmstypes.KeySpecSymmetricDefault,
	}}, nil
}

func TestListKeysWithoutDetailsSkipsDescribe(t *testing.T) {
	client := &mockClient{listKeysFn: twoPageKeys()}
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return client })

	output, err := executeCommand(t, "--output", "text", "kms", "list-keys")
	if err != nil {
		t.Fatalf("execute list-keys: %v", err)
	}
	if !strings.Contains(output, "key_id=key-aws") || !strings.Contains(output, "key_id=key-cmk") {
		t.Fatalf("expected both keys: %s", output)
	}
}

func TestListKeysCustomerManagedOnly(t *testing.T) {
	client := &mockClient{listKeysFn: twoPageKeys(), describeKeyFn: describeByID}
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return client })

	output, err := executeCommand(t, "--output", "text", "kms", "list-keys", "--customer-managed")
	if err != nil {
		t.Fatalf("execute list-keys: %v", err)
	}
	if strings.Contains(output, "key_id=key-aws") {
		t.Fatalf("expected AWS-managed key to be filtered: %s", output)
	}
	if !strings.Contains(output, "key_id=key-cmk") || !strings.Contains(output, "manager=CUSTOMER") {
		t.Fatalf("expected customer key details: %s", output)
	}
}

func TestListKeysFilterTag(t *testing.T) {
	client := &mockClient{
		listKeysFn:    twoPageKeys(),
		describeKeyFn: describeByID,
		listResourceTagsFn: func(_ context.Context, in *kms.ListResourceTagsInput, _ ...func(*kms.Options)) (*kms.ListResourceTagsOutput, error) {
			if cliutil.PointerToString(in.KeyId) == "key-aws" {
				return &kms.ListResourceTagsOutput{}, nil
			}
			return &kms.ListResourceTagsOutput{Tags: []kmstypes.Tag{{TagKey: cliutil.Ptr("team"), TagValue: cliutil.Ptr("data")}}}, nil
		},
	}
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return client })

	output, err := executeCommand(t, "--output", "text", "kms", "list-keys", "--filter-tag", "team=data")
	if err != nil {
		t.Fatalf("execute list-keys: %v", err)
	}
	if strings.Contains(output, "key_id=key-aws") || !strings.Contains(output, "key_id=key-cmk") {
		t.Fatalf("unexpected tag filtering result: %s", output)
	}
}

func TestListKeysInvalidTagFilter(t *testing.T) {
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return &mockClient{} })

	_, err := executeCommand(t, "kms", "list-keys", "--filter-tag", "broken")
	if err == nil || !strings.Contains(err.Error(), "KEY=VALUE") {
		t.Fatalf("expected tag filter error, got %v", err)
	}
}

func TestListKeysDescribeFailure(t *testing.T) {
	client := &mockClient{
		listKeysFn: twoPageKeys(),
		describeKeyFn: func(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
			return nil, errors.New("describe failed")
		},
	}
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return client })

	_, err := executeCommand(t, "kms", "list-keys", "--details")
	if err == nil || !strings.Contains(err.Error(), "describe key key-aws") {
		t.Fatalf("expected describe error, got %v", err)
	}
}
