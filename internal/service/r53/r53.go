package r53

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the Route 53 client used by this package.
type API interface {
	ListHealthChecks(context.Context, *route53.ListHealthChecksInput, ...func(*route53.Options)) (*route53.ListHealthChecksOutput, error)
	ListHostedZones(context.Context, *route53.ListHostedZonesInput, ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
}

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return route53.NewFromConfig(cfg)
}

// NewCommand returns the r53 service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("r53", "Inspect Route 53 resources")

	cmd.AddCommand(newListHostedZonesCommand())
	cmd.AddCommand(newListHealthChecksCommand())

	return cmd
}

func newListHostedZonesCommand() *cobra.Command {
	var privateOnly bool

	cmd := &cobra.Command{
		Use:   "list-hosted-zones",
		Short: "List Route 53 hosted zones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListHostedZones(cmd, privateOnly)
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&privateOnly, "private", false, "Only list private hosted zones")

	return cmd
}

func newListHealthChecksCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "list-health-checks",
		Short:        "List Route 53 health checks",
		RunE:         runListHealthChecks,
		SilenceUsage: true,
	}
}

func runListHostedZones(cmd *cobra.Command, privateOnly bool) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	zones, err := cliutil.Collect(cmd, runtime, func(ctx context.Context, marker *string) (awsutilsaws.PageResult[route53types.HostedZone, string], error) {
		page, listErr := client.ListHostedZones(ctx, &route53.ListHostedZonesInput{Marker: marker})
		if listErr != nil {
			return awsutilsaws.PageResult[route53types.HostedZone, string]{}, listErr
		}
		return awsutilsaws.PageResult[route53types.HostedZone, string]{
			Items:     page.HostedZones,
			NextToken: markerToken(page.IsTruncated, page.NextMarker),
		}, nil
	})
	if err != nil && len(zones) == 0 {
		return fmt.Errorf("list hosted zones: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "hosted zones", len(zones), err)

	rows := make([][]string, 0, len(zones))
	for _, zone := range zones {
		private := zone.Config != nil && zone.Config.PrivateZone
		if privateOnly && !private {
			continue
		}

		rows = append(rows, []string{
			strings.TrimPrefix(cliutil.PointerToString(zone.Id), "/hostedzone/"),
			cliutil.PointerToString(zone.Name),
			fmt.Sprintf("%t", private),
			fmt.Sprintf("%d", cliutil.PointerToInt64(zone.ResourceRecordSetCount)),
		})
	}

	return cliutil.WriteCollected(cmd, runtime, "list hosted zones", []string{"zone_id", "name", "private", "record_sets"}, rows, err)
}

func runListHealthChecks(cmd *cobra.Command, _ []string) error {
	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	checks, err := cliutil.Collect(cmd, runtime, func(ctx context.Context, marker *string) (awsutilsaws.PageResult[route53types.HealthCheck, string], error) {
		page, listErr := client.ListHealthChecks(ctx, &route53.ListHealthChecksInput{Marker: marker})
		if listErr != nil {
			return awsutilsaws.PageResult[route53types.HealthCheck, string]{}, listErr
		}
		return awsutilsaws.PageResult[route53types.HealthCheck, string]{
			Items:     page.HealthChecks,
			NextToken: markerToken(page.IsTruncated, page.NextMarker),
		}, nil
	})
	if err != nil && len(checks) == 0 {
		return fmt.Errorf("list health checks: %s", awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "health checks", len(checks), err)

	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		var checkType, target string
		if config := check.HealthCheckConfig; config != nil {
			checkType = string(config.Type)
			target = cliutil.PointerToString(config.FullyQualifiedDomainName)
			if target == "" {
				target = cliutil.PointerToString(config.IPAddress)
			}
		}
		rows = append(rows, []string{cliutil.PointerToString(check.Id), checkType, target})
	}

	return cliutil.WriteCollected(cmd, runtime, "list health checks", []string{"health_check_id", "type", "target"}, rows, err)
}

// Route 53 signals more pages with IsTruncated; NextMarker alone is not authoritative.
func markerToken(truncated bool, marker *string) *string {
	if !truncated {
		return nil
	}
	return awsutilsaws.StringToken(marker)
}
