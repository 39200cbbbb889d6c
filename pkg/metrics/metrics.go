package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokeproxy_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestsInFlight is the number of requests being served.
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokeproxy_api_requests_in_flight",
			Help: "Requests currently being served",
		},
	)

	// CacheLookups counts cache-aside lookups by result (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"result"},
	)

	// CacheWriteErrors counts swallowed cache write failures.
	CacheWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeproxy_cache_write_errors_total",
			Help: "Total number of failed cache writes",
		},
	)

	// UpstreamRequests counts calls to the upstream API by outcome (ok|not_found|error).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_upstream_requests_total",
			Help: "Total number of upstream requests",
		},
		[]string{"outcome"},
	)

	// Imports counts background imports by result (success|failure).
	Imports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokeproxy_imports_total",
			Help: "Total number of background imports",
		},
		[]string{"result"},
	)

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokeproxy_rate_limited_total",
			Help: "Total number of rate limited requests",
		},
	)
)
