// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides the revalidation cache for rendered pages. A page is
// served from Valkey until its TTL runs out; the next request after that
// fetches fresh content and stores the new render.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"eduhansa/internal/metrics"
	"eduhansa/internal/query"
	"eduhansa/internal/render"
)

// pageKeyPrefix is the Valkey key prefix for cached pages.
const pageKeyPrefix = "page:"

// PageCache stores rendered HTML in Valkey for a fixed revalidation interval.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a page cache backed by the given Valkey client.
// Entries expire after ttl.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

// TTL returns the revalidation interval.
func (pc *PageCache) TTL() time.Duration {
	return pc.ttl
}

// Get retrieves cached HTML for a page key. A Valkey error is reported as
// a miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.PageCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.PageCacheTotal.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "page cache get error", "key", key, "error", err)
		return nil, false
	}
	metrics.PageCacheTotal.WithLabelValues("hit").Inc()
	slog.DebugContext(ctx, "page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "page cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached pages by scanning for the prefix. The
// import tool calls it after writing documents so changes show up before
// the TTL runs out.
func (pc *PageCache) InvalidateAll(ctx context.Context) (int, error) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.InfoContext(ctx, "page cache cleared", "deleted", deleted)
	}
	return deleted, nil
}

// listingPaths are the pages whose content depends on the query string.
var listingPaths = map[string]bool{"/library": true, "/blog": true}

// Key returns the cache key for a request. Listing pages are keyed on their
// normalized query, so parameters that render the same page share one
// entry; every other page is keyed on its path alone. HTMX fragment
// requests for listings get their own key.
func Key(r *http.Request) string {
	key := r.URL.Path
	if !listingPaths[key] {
		return key
	}
	if q := query.Values(query.FromValues(r.URL.Query())).Encode(); q != "" {
		key += "?" + q
	}
	if render.IsHTMX(r) {
		key += "#fragment"
	}
	return key
}
