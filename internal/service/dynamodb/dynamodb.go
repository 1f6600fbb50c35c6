package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
	"github.com/towardsthecloud/aws-utils/internal/cliutil"
)

// API is the subset of the DynamoDB client used by this package.
type API interface {
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Item is a raw DynamoDB item as returned by Scan.
type Item = map[string]ddbtypes.AttributeValue

var loadAWSConfig = awsutilsaws.LoadAWSConfig
var newClient = func(cfg awssdk.Config) API {
	return dynamodb.NewFromConfig(cfg)
}

// NewCommand returns the dynamodb service group command.
func NewCommand() *cobra.Command {
	cmd := cliutil.NewServiceGroupCommand("dynamodb", "Read DynamoDB tables")
	cmd.AddCommand(newScanTableCommand())
	return cmd
}

func newScanTableCommand() *cobra.Command {
	var tableName string
	var pageSize int32
	var consistent bool

	cmd := &cobra.Command{
		Use:   "scan-table",
		Short: "Scan every item of a DynamoDB table",
		Long: `Scan every item of a DynamoDB table, following LastEvaluatedKey until the
table is exhausted. The scan is not a snapshot: items written while it runs
may or may not appear.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScanTable(cmd, tableName, pageSize, consistent)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&tableName, "table-name", "", "Table name")
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "Items evaluated per Scan call (0 = service default)")
	cmd.Flags().BoolVar(&consistent, "consistent-read", false, "Use strongly consistent reads for each page")

	return cmd
}

func runScanTable(cmd *cobra.Command, tableName string, pageSize int32, consistent bool) error {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return fmt.Errorf("--table-name is required")
	}
	if pageSize < 0 {
		return fmt.Errorf("--page-size must be >= 0")
	}

	runtime, _, client, err := cliutil.NewServiceRuntime(cmd, loadAWSConfig, newClient)
	if err != nil {
		return err
	}

	items, err := cliutil.Collect(cmd, runtime, ScanPages(client, ScanOptions{
		TableName:      tableName,
		PageSize:       pageSize,
		ConsistentRead: consistent,
	}))
	if err != nil && len(items) == 0 {
		runtime.Logger.Error("error retrieving items from DynamoDB table", "table", tableName, "error", err)
		return fmt.Errorf("scan table %s: %s", tableName, awsutilsaws.FormatUserError(err))
	}
	cliutil.LogRetrieved(runtime, "DynamoDB items", len(items), err, "table", tableName)

	rows, decodeErr := itemRows(items)
	if decodeErr != nil {
		return fmt.Errorf("decode items from table %s: %w", tableName, decodeErr)
	}

	return cliutil.WriteCollected(cmd, runtime, "scan table "+tableName, []string{"item"}, rows, err)
}

// ScanOptions describes the table a scan source reads.
type ScanOptions struct {
	TableName      string
	PageSize       int32
	ConsistentRead bool
}

// ScanPages returns a page source over Scan. LastEvaluatedKey is handed back
// as ExclusiveStartKey without inspection; an empty key ends the scan.
func ScanPages(client API, opts ScanOptions) awsutilsaws.PageFetcher[Item, Item] {
	return func(ctx context.Context, startKey *Item) (awsutilsaws.PageResult[Item, Item], error) {
		input := &dynamodb.ScanInput{TableName: cliutil.Ptr(opts.TableName)}
		if startKey != nil {
			input.ExclusiveStartKey = *startKey
		}
		if opts.PageSize > 0 {
			input.Limit = cliutil.Ptr(opts.PageSize)
		}
		if opts.ConsistentRead {
			input.ConsistentRead = cliutil.Ptr(true)
		}

		out, err := client.Scan(ctx, input)
		if err != nil {
			return awsutilsaws.PageResult[Item, Item]{}, err
		}

		result := awsutilsaws.PageResult[Item, Item]{Items: out.Items}
		if len(out.LastEvaluatedKey) > 0 {
			next := out.LastEvaluatedKey
			result.NextToken = &next
		}
		return result, nil
	}
}

// itemRows renders each item as compact JSON. encoding/json sorts map keys,
// so attributes appear in name order. Numbers keep their DynamoDB text.
func itemRows(items []Item) ([][]string, error) {
	decoded := make([]map[string]any, 0, len(items))
	err := attributevalue.UnmarshalListOfMapsWithOptions(items, &decoded, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(decoded))
	for _, item := range decoded {
		raw, err := json.Marshal(exactNumbers(item))
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{string(raw)})
	}
	return rows, nil
}

// exactNumbers swaps decoded DynamoDB numbers for json.Number so they are
// written verbatim instead of as quoted strings or rounded floats.
func exactNumbers(value any) any {
	switch v := value.(type) {
	case attributevalue.Number:
		return json.Number(v)
	case []attributevalue.Number:
		out := make([]json.Number, len(v))
		for i, n := range v {
			out[i] = json.Number(n)
		}
		return out
	case map[string]any:
		for key, inner := range v {
			v[key] = exactNumbers(inner)
		}
		return v
	case []any:
		for i, inner := range v {
			v[i] = exactNumbers(inner)
		}
		return v
	default:
		return value
	}
}
