package org

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	organizationtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

type mockClient struct {
	listAccountsFn          func(context.Context, *organizations.ListAccountsInput, ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
	listAccountsForParentFn func(context.Context, *organizations.ListAccountsForParentInput, ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error)
	listOUsForParentFn      func(context.Context, *organizations.ListOrganizationalUnitsForParentInput, ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error)
	listRootsFn             func(context.Context, *organizations.ListRootsInput, ...func(*organizations.Options)) (*organizations.ListRootsOutput, error)
}

func (m *mockClient) ListAccounts(ctx context.Context, in *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error) {
	if m.listAccountsFn == nil {
		return nil, errors.New("ListAccounts not mocked")
	}
	return m.listAccountsFn(ctx, in, optFns...)
}

func (m *mockClient) ListAccountsForParent(ctx context.Context, in *organizations.ListAccountsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error) {
	if m.listAccountsForParentFn == nil {
		return nil, errors.New("ListAccountsForParent not mocked")
	}
	return m.listAccountsForParentFn(ctx, in, optFns...)
}

func (m *mockClient) ListOrganizationalUnitsForParent(ctx context.Context, in *organizations.ListOrganizationalUnitsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error) {
	if m.listOUsForParentFn == nil {
		return nil, errors.New("ListOrganizationalUnitsForParent not mocked")
	}
	return m.listOUsForParentFn(ctx, in, optFns...)
}

func (m *mockClient) ListRoots(ctx context.Context, in *organizations.ListRootsInput, optFns ...func(*organizations.Options)) (*organizations.ListRootsOutput, error) {
	if m.listRootsFn == nil {
		return nil, errors.New("ListRoots not mocked")
	}
	return m.listRootsFn(ctx, in, optFns...)
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

func account(id, name string) organizationtypes.Account {
	return organizationtypes.Account{
		Id:     cliutil.Ptr(id),
		Name:   cliutil.Ptr(name),
		Email:  cliutil.Ptr(name + "@example.com"),
		Status: organizationtypes.AccountStatusActive,
	}
}

func TestListAccountsSortedAcrossPages(t *testing.T) {
	client := &mockClient{
		listAccountsFn: func(_ context.Context, in *organizations.ListAccountsInput, _ ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error) {
			if in.NextToken == nil {
				return &organizations.ListAccountsOutput{Accounts: []organizationtypes.Account{account("222222222222", "beta")}, NextToken: cliutil.Ptr("p2")}, nil
			}
			return &organizations.ListAccountsOutput{Accounts: []organizationtypes.Account{account("111111111111", "alpha")}}, nil
		},
	}
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return client })

	output, err := executeCommand(t, "--output", "json", "org", "list-accounts")
	if err != nil {
		t.Fatalf("execute list-accounts: %v", err)
	}
	if strings.Index(output, "111111111111") > strings.Index(output, "222222222222") {
		t.Fatalf("expected accounts sorted by id: %s", output)
	}
	if !strings.Contains(output, `msg="retrieved accounts"`) || !strings.Contains(output, "count=2") {
		t.Fatalf("expected log line: %s", output)
	}
}

func TestListAccountsByNestedOU(t *testing.T) {
	client := &mockClient{
		listRootsFn: func(context.Context, *organizations.ListRootsInput, ...func(*organizations.Options)) (*organizations.ListRootsOutput, error) {
			return &organizations.ListRootsOutput{Roots: []organizationtypes.Root{{Id: cliutil.Ptr("r-root")}}}, nil
		},
		listOUsForParentFn: func(_ context.Context, in *organizations.ListOrganizationalUnitsForParentInput, _ ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error) {
			switch cliutil.PointerToString(in.ParentId) {
			case "r-root":
				return &organizations.ListOrganizationalUnitsForParentOutput{OrganizationalUnits: []organizationtypes.OrganizationalUnit{{Id: cliutil.Ptr("ou-workloads"), Name: cliutil.Ptr("Workloads")}}}, nil
			case "ou-workloads":
				return &organizations.ListOrganizationalUnitsForParentOutput{OrganizationalUnits: []organizationtypes.OrganizationalUnit{{Id: cliutil.Ptr("ou-prod"), Name: cliutil.Ptr("Prod")}}}, nil
			default:
				return &organizations.ListOrganizationalUnitsForParentOutput{}, nil
			}
		},
		listAccountsForParentFn: func(_ context.Context, in *organizations.ListAccountsForParentInput, _ ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error) {
			if cliutil.PointerToString(in.ParentId) != "ou-prod" {
				t.Fatalf("unexpected parent: %s", cliutil.PointerToString(in.ParentId))
			}
			return &organizations.ListAccountsForParentOutput{Accounts: []organizationtypes.Account{account("333333333333", "prod")}}, nil
		},
	}
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return client })

	output, err := executeCommand(t, "--output", "json", "org", "list-accounts", "--ou-name", "prod")
	if err != nil {
		t.Fatalf("execute list-accounts --ou-name: %v", err)
	}
	if !strings.Contains(output, `"parent": "/Prod"`) || !strings.Contains(output, "333333333333") {
		t.Fatalf("unexpected output: %s", output)
	}
}

func TestListAccountsUnknownOU(t *testing.T) {
	client := &mockClient{
		listRootsFn: func(context.Context, *organizations.ListRootsInput, ...func(*organizations.Options)) (*organizations.ListRootsOutput, error) {
			return &organizations.ListRootsOutput{Roots: []organizationtypes.Root{{Id: cliutil.Ptr("r-root")}}}, nil
		},
		listOUsForParentFn: func(context.Context, *organizations.ListOrganizationalUnitsForParentInput, ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error) {
			return &organizations.ListOrganizationalUnitsForParentOutput{}, nil
		},
	}
	withMockDeps(t, standardLoader, func(awssdk.Config) API { return client })

	_, err := executeCommand(t, "org", "list-accounts", "--ou-name", "missing")
	if err == nil || !strings.Contains(err.Error(), "organizational unit not found: missing") {
		t.Fatalf("expected unknown OU error, got %v", err)
	}
}
