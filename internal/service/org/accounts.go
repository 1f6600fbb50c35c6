package org

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/organizations"
	organizationtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

func runListAccounts(cmd *cobra.Command, ouNames []string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	headers := []string{"account_id", "account_name", "email", "status", "joined_at", "parent"}

	if len(ouNames) == 0 {
		accounts, listErr := cliutil.Collect(cmd, runtime, accountPages(client))
		if listErr != nil && len(accounts) == 0 {
			return fmt.Errorf("list accounts: %s", awsutilsaws.FormatUserError(listErr))
		}
		cliutil.LogRetrieved(runtime, "accounts", len(accounts), listErr)

		sortAccountsByID(accounts)
		rows := make([][]string, 0, len(accounts))
		for _, account := range accounts {
			rows = append(rows, accountRow(account, ""))
		}
		return cliutil.WriteCollected(cmd, runtime, "list accounts", headers, rows, listErr)
	}

	// OU-scoped listings combine several walks, so they stay all-or-error.
	runtime.Options.AllowPartial = false

	rootID, err := getRoot(cmd.Context(), client)
	if err != nil {
		return fmt.Errorf("resolve organization root: %s", awsutilsaws.FormatUserError(err))
	}

	rowsByID := make(map[string][]string)
	for _, ouName := range ouNames {
		ou, ouErr := findOUByName(cmd, runtime, client, rootID, ouName)
		if ouErr != nil {
			return ouErr
		}
		accounts, listErr := cliutil.Collect(cmd, runtime, accountsForParentPages(client, cliutil.PointerToString(ou.Id)))
		if listErr != nil {
			return fmt.Errorf("list accounts for OU %q: %s", ouName, awsutilsaws.FormatUserError(listErr))
		}
		for _, account := range accounts {
			rowsByID[cliutil.PointerToString(account.Id)] = accountRow(account, "/"+cliutil.PointerToString(ou.Name))
		}
	}

	ids := make([]string, 0, len(rowsByID))
	for id := range rowsByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, rowsByID[id])
	}
	return cliutil.WriteDataset(cmd, runtime, headers, rows)
}

func accountRow(account organizationtypes.Account, parent string) []string {
	return []string{
		cliutil.PointerToString(account.Id),
		cliutil.PointerToString(account.Name),
		cliutil.PointerToString(account.Email),
		string(account.Status),
		formatTime(account.JoinedTimestamp),
		parent,
	}
}

func getRoot(ctx context.Context, client API) (string, error) {
	out, err := client.ListRoots(ctx, &organizations.ListRootsInput{})
	if err != nil {
		return "", err
	}
	if len(out.Roots) == 0 {
		return "", fmt.Errorf("no organization roots found")
	}
	return cliutil.PointerToString(out.Roots[0].Id), nil
}

func accountPages(client API) awsutilsaws.PageFetcher[organizationtypes.Account, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[organizationtypes.Account, string], error) {
		out, err := client.ListAccounts(ctx, &organizations.ListAccountsInput{NextToken: token})
		if err != nil {
			return awsutilsaws.PageResult[organizationtypes.Account, string]{}, err
		}
		return awsutilsaws.PageResult[organizationtypes.Account, string]{
			Items:     out.Accounts,
			NextToken: awsutilsaws.StringToken(out.NextToken),
		}, nil
	}
}

func accountsForParentPages(client API, parentID string) awsutilsaws.PageFetcher[organizationtypes.Account, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[organizationtypes.Account, string], error) {
		out, err := client.ListAccountsForParent(ctx, &organizations.ListAccountsForParentInput{ParentId: cliutil.Ptr(parentID), NextToken: token})
		if err != nil {
			return awsutilsaws.PageResult[organizationtypes.Account, string]{}, err
		}
		return awsutilsaws.PageResult[organizationtypes.Account, string]{
			Items:     out.Accounts,
			NextToken: awsutilsaws.StringToken(out.NextToken),
		}, nil
	}
}

func ouPages(client API, parentID string) awsutilsaws.PageFetcher[organizationtypes.OrganizationalUnit, string] {
	return func(ctx context.Context, token *string) (awsutilsaws.PageResult[organizationtypes.OrganizationalUnit, string], error) {
		out, err := client.ListOrganizationalUnitsForParent(ctx, &organizations.ListOrganizationalUnitsForParentInput{ParentId: cliutil.Ptr(parentID), NextToken: token})
		if err != nil {
			return awsutilsaws.PageResult[organizationtypes.OrganizationalUnit, string]{}, err
		}
		return awsutilsaws.PageResult[organizationtypes.OrganizationalUnit, string]{
			Items:     out.OrganizationalUnits,
			NextToken: awsutilsaws.StringToken(out.NextToken),
		}, nil
	}
}

// findOUByName walks the OU tree breadth-first from the root and matches names case-insensitively.
func findOUByName(cmd *cobra.Command, runtime cliutil.CommandRuntime, client API, rootID, ouName string) (organizationtypes.OrganizationalUnit, error) {
	targetName := strings.TrimSpace(ouName)
	if targetName == "" {
		return organizationtypes.OrganizationalUnit{}, fmt.Errorf("organizational unit not found: %s", ouName)
	}

	queue := []string{rootID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		ous, err := cliutil.Collect(cmd, runtime, ouPages(client, parentID))
		if err != nil {
			return organizationtypes.OrganizationalUnit{}, fmt.Errorf("list organizational units under %s: %s", parentID, awsutilsaws.FormatUserError(err))
		}
		for _, ou := range ous {
			if strings.EqualFold(cliutil.PointerToString(ou.Name), targetName) {
				return ou, nil
			}
			if id := cliutil.PointerToString(ou.Id); id != "" {
				queue = append(queue, id)
			}
		}
	}

	return organizationtypes.OrganizationalUnit{}, fmt.Errorf("organizational unit not found: %s", ouName)
}

func sortAccountsByID(accounts []organizationtypes.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return cliutil.PointerToString(accounts[i].Id) < cliutil.PointerToString(accounts[j].Id)
	})
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
