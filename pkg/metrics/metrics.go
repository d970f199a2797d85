package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TilesRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_requests_total",
		Help: "Total number of tile fetch requests",
	})

	TilesCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_cache_hits_total",
		Help: "Total number of tile cache hits",
	})

	TilesCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_cache_misses_total",
		Help: "Total number of tile cache misses",
	})

	TilesCacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tiles_cache_errors_total",
		Help: "Total number of tile cache errors",
	}, []string{"operation"})

	TilesUpstreamRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_upstream_requests_total",
		Help: "Total number of upstream tile requests",
	})

	TilesUpstreamShared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tiles_upstream_shared_total",
		Help: "Total number of tile requests served by an in-flight upstream fetch",
	})

	TilesUpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tiles_upstream_latency_seconds",
		Help:    "Latency of upstream tile fetches in seconds",
		Buckets: prometheus.DefBuckets,
	})

	TilesFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tiles_fetch_errors_total",
		Help: "Total number of failed tile fetches by kind",
	}, []string{"kind"})

	LayerUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "layer_updates_total",
		Help: "Total number of viewport updates",
	})

	LayerSuperseded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "layer_superseded_total",
		Help: "Tiles of superseded viewport updates, skipped before fetch or dropped after",
	}, []string{"stage"})

	CacheStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_stores_total",
		Help: "Total number of cache store operations",
	})

	// Redis metrics
	RedisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})

	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	}, []string{"operation"})

	RedisPoolStats = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "redis_pool_stats",
		Help: "Redis connection pool statistics",
	}, []string{"stat"})
)
