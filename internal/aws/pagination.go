package aws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrCollectionFailed reports that a page fetch failed mid-collection.
	ErrCollectionFailed = errors.New("collection failed")
	// ErrPageLimitExceeded reports that the source still had pages after the configured maximum.
	ErrPageLimitExceeded = errors.New("page limit exceeded")
	// ErrCancelled reports that the context was cancelled or timed out between page fetches.
	ErrCancelled = errors.New("collection cancelled")
)

// PageResult holds a single page of items and a continuation token.
// A nil NextToken means the listing is exhausted.
type PageResult[T, K any] struct {
	Items     []T
	NextToken *K
}

// PageFetcher fetches one page of items based on the provided continuation token.
// The first call receives a nil token.
type PageFetcher[T, K any] func(ctx context.Context, nextToken *K) (PageResult[T, K], error)

// FetchPage lets a plain function act as a PageSource.
func (f PageFetcher[T, K]) FetchPage(ctx context.Context, nextToken *K) (PageResult[T, K], error) {
	return f(ctx, nextToken)
}

// PageSource is a remote listing that can be read one page at a time.
type PageSource[T, K any] interface {
	FetchPage(ctx context.Context, nextToken *K) (PageResult[T, K], error)
}

// CollectionError describes why a collection stopped before the source was exhausted.
type CollectionError struct {
	// Kind is one of ErrCollectionFailed, ErrPageLimitExceeded or ErrCancelled.
	Kind error
	// Pages is the number of pages fetched successfully.
	Pages int
	// Items is the number of items gathered before the failure.
	Items int
	Err   error
}

func (e *CollectionError) Error() string {
	msg := fmt.Sprintf("%s after %d page(s), %d item(s)", e.Kind, e.Pages, e.Items)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CollectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// CollectOption configures a collection.
type CollectOption func(*collectConfig)

type collectConfig struct {
	maxPages int
	logger   *slog.Logger
}

// WithMaxPages fails the collection with ErrPageLimitExceeded when the source
// still reports more pages after n fetches. Values <= 0 leave it unbounded.
func WithMaxPages(n int) CollectOption {
	return func(c *collectConfig) {
		c.maxPages = n
	}
}

// WithLogger emits a debug record for every fetched page.
func WithLogger(logger *slog.Logger) CollectOption {
	return func(c *collectConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// CollectAllPages walks all pages and returns a flattened list of items.
//
// Items keep page-arrival order. The listing is read live, page after page,
// so items written behind the cursor after the walk started can be missing and
// items deleted after their page was read are still returned.
//
// On any failure the gathered items are discarded and a *CollectionError is
// returned. Use CollectPages to keep partial results.
func CollectAllPages[T, K any](ctx context.Context, fetch PageFetcher[T, K], opts ...CollectOption) ([]T, error) {
	items, err := CollectPages(ctx, fetch, opts...)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CollectAllFrom is CollectAllPages over a PageSource.
func CollectAllFrom[T, K any](ctx context.Context, source PageSource[T, K], opts ...CollectOption) ([]T, error) {
	return CollectAllPages(ctx, source.FetchPage, opts...)
}

// CollectPages walks all pages like CollectAllPages but returns the items
// gathered so far alongside the error when the walk stops early.
func CollectPages[T, K any](ctx context.Context, fetch PageFetcher[T, K], opts ...CollectOption) ([]T, error) {
	cfg := collectConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	items := make([]T, 0)
	pages := 0

	var next *K
	for {
		if err := ctx.Err(); err != nil {
			return items, &CollectionError{Kind: ErrCancelled, Pages: pages, Items: len(items), Err: err}
		}

		page, err := fetch(ctx, next)
		if err != nil {
			kind := ErrCollectionFailed
			if ctx.Err() != nil {
				kind = ErrCancelled
			}
			return items, &CollectionError{Kind: kind, Pages: pages, Items: len(items), Err: err}
		}
		pages++

		items = append(items, page.Items...)
		cfg.logger.DebugContext(ctx, "fetched page",
			"page", pages,
			"page_items", len(page.Items),
			"total_items", len(items),
			"more", page.NextToken != nil,
		)

		if page.NextToken == nil {
			return items, nil
		}
		if cfg.maxPages > 0 && pages >= cfg.maxPages {
			return items, &CollectionError{Kind: ErrPageLimitExceeded, Pages: pages, Items: len(items)}
		}

		next = page.NextToken
	}
}

// StringToken normalizes an SDK string continuation token: nil and "" both end the listing.
func StringToken(token *string) *string {
	if token == nil || *token == "" {
		return nil
	}
	return token
}
