// Package content is the boundary to the document store. Every failure is
// logged and turned into an empty or absent result here, so nothing above
// this package ever sees a store error.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eduhansa/internal/metrics"
	"eduhansa/internal/models"
)

// Source is the document store query interface.
type Source interface {
	List(ctx context.Context, kind models.Kind) ([]models.RawDocument, error)
	FindBySlug(ctx context.Context, kind models.Kind, slug string) (*models.RawDocument, error)
}

// query describes what a QueryTag asks of the store.
type query struct {
	kind   models.Kind
	single bool
}

var queries = map[models.QueryTag]query{
	models.QueryBooks: {kind: models.KindBook},
	models.QueryBook:  {kind: models.KindBook, single: true},
	models.QueryPosts: {kind: models.KindPost},
	models.QueryPost:  {kind: models.KindPost, single: true},
}

// Client runs predefined queries against a Source. Every call is a fresh
// round trip: no retries and no caching.
type Client struct {
	source Source
}

// NewClient creates a Client reading from source.
func NewClient(source Source) *Client {
	return &Client{source: source}
}

// FetchList runs a list query and returns its documents in store order.
// On any failure it returns an empty slice.
func (c *Client) FetchList(ctx context.Context, tag models.QueryTag) []models.RawDocument {
	q, ok := queries[tag]
	if !ok || q.single {
		c.fail(ctx, tag, fmt.Errorf("%q is not a list query", tag))
		return []models.RawDocument{}
	}

	docs, err := c.source.List(ctx, q.kind)
	if err != nil {
		c.fail(ctx, tag, err)
		return []models.RawDocument{}
	}
	if docs == nil {
		docs = []models.RawDocument{}
	}

	metrics.StoreFetchTotal.WithLabelValues(string(tag), "ok").Inc()
	slog.DebugContext(ctx, "content fetched", "query", tag, "count", len(docs))
	return docs
}

// FetchOne runs a single-document query by slug. The boolean is false when
// no document matches, which callers render as "not found", and also when
// the fetch failed.
func (c *Client) FetchOne(ctx context.Context, tag models.QueryTag, slug string) (models.RawDocument, bool) {
	q, ok := queries[tag]
	if !ok || !q.single {
		c.fail(ctx, tag, fmt.Errorf("%q is not a single-document query", tag))
		return models.RawDocument{}, false
	}

	doc, err := c.source.FindBySlug(ctx, q.kind, slug)
	if err != nil {
		c.fail(ctx, tag, err)
		return models.RawDocument{}, false
	}
	if doc == nil {
		metrics.StoreFetchTotal.WithLabelValues(string(tag), "not_found").Inc()
		return models.RawDocument{}, false
	}

	metrics.StoreFetchTotal.WithLabelValues(string(tag), "ok").Inc()
	return *doc, true
}

// fail records a fetch failure. A canceled request is not an error: the
// caller has gone away and the result is discarded anyway.
func (c *Client) fail(ctx context.Context, tag models.QueryTag, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		metrics.StoreFetchTotal.WithLabelValues(string(tag), "canceled").Inc()
		slog.DebugContext(ctx, "content fetch canceled", "query", tag)
		return
	}
	metrics.StoreFetchTotal.WithLabelValues(string(tag), "error").Inc()
	slog.ErrorContext(ctx, "content fetch failed", "query", tag, "error", err)
}
