package org

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

type API interface {
	ListAccounts(context.Context, *organizations.ListAccountsInput, ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
	ListAccountsForParent(context.Context, *organizations.ListAccountsForParentInput, ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error)
	ListOrganizationalUnitsForParent(context.Context, *organizations.ListOrganizationalUnitsForParentInput, ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error)
	ListRoots(context.Context, *organizations.ListRootsInput, ...func(*organizations.Options)) (*organizations.ListRootsOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return organizations.NewFromConfig(cfg)
}

func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("org", "Inspect AWS Organizations")
	cmd.AddCommand(newListAccountsCommand())
	return cmd
}

func newListAccountsCommand() *cobra.Command {
	var ouNames []string

	cmd := &cobra.Command{
		Use:   "list-accounts",
		Short: "List organization member accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListAccounts(cmd, ouNames)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringSliceVar(&ouNames, "ou-name", nil, "Only list accounts directly under these organizational units")

	return cmd
}
