// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduhansa_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eduhansa_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// StoreFetchTotal counts content store round trips by query tag and
	// outcome ("ok", "not_found", "error", "canceled").
	StoreFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduhansa_store_fetch_total",
		Help: "Content store fetches by query and outcome",
	}, []string{"query", "outcome"})

	PageCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduhansa_page_cache_total",
		Help: "Rendered page cache lookups by result",
	}, []string{"result"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eduhansa_rate_limited_total",
		Help: "Requests rejected by the API rate limiter",
	})
)
