package cliutil

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	awsutilsaws "github.com/towardsthecloud/aws-utils/internal/aws"
)

// Collect drains a paginated listing honouring --max-pages, --timeout and --allow-partial.
//
// Without --allow-partial a failed listing returns no items. With it, the
// items gathered before the failure are returned together with the error.
func Collect[T, K any](cmd *cobra.Command, runtime CommandRuntime, fetch awsutilsaws.PageFetcher[T, K]) ([]T, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if runtime.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runtime.Options.Timeout)
		defer cancel()
	}

	opts := []awsutilsaws.CollectOption{awsutilsaws.WithMaxPages(runtime.Options.MaxPages)}
	if runtime.Logger != nil {
		opts = append(opts, awsutilsaws.WithLogger(runtime.Logger))
	}

	if runtime.Options.AllowPartial {
		return awsutilsaws.CollectPages(ctx, fetch, opts...)
	}

	return awsutilsaws.CollectAllFrom[T, K](ctx, fetch, opts...)
}

// LogRetrieved records how many items a listing returned. A listing that
// stopped early is logged as a warning instead of a success.
func LogRetrieved(runtime CommandRuntime, what string, count int, collectErr error, attrs ...any) {
	if runtime.Logger == nil {
		return
	}
	args := append([]any{"count", count}, attrs...)
	if collectErr != nil {
		args = append(args, "error", awsutilsaws.FormatUserError(collectErr))
		runtime.Logger.Warn("listing stopped early, keeping partial "+what, args...)
		return
	}
	runtime.Logger.Info("retrieved "+what, args...)
}

// WriteCollected writes rows built from collected items. A non-nil collectErr
// is returned after the rows so partial output never exits successfully.
func WriteCollected(cmd *cobra.Command, runtime CommandRuntime, what string, headers []string, rows [][]string, collectErr error) error {
	if err := WriteDataset(cmd, runtime, headers, rows); err != nil {
		return err
	}
	if collectErr != nil {
		return fmt.Errorf("%s: partial result with %d row(s): %s", what, len(rows), awsutilsaws.FormatUserError(collectErr))
	}
	return nil
}
