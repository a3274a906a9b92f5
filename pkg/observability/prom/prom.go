// Package prom exports observability hook events as Prometheus metrics.
//
// A [Collector] implements every hook interface of package observability
// and owns its own registry, so several collectors never clash:
//
//	c := prom.NewCollector("wiregraph")
//	c.Register()
//	router.Handle("/metrics", c.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/wiregraph/pkg/observability"
)

// Collector holds the metrics fed by the hooks.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	cleanupRuns     prometheus.Counter
	cleanupChanges  *prometheus.CounterVec
	cleanupDuration prometheus.Histogram
	placements      *prometheus.CounterVec

	extractions     *prometheus.CounterVec
	extractDuration prometheus.Histogram
	extractedNets   prometheus.Histogram

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
}

var (
	_ observability.TopologyHooks = (*Collector)(nil)
	_ observability.ExtractHooks  = (*Collector)(nil)
	_ observability.CacheHooks    = (*Collector)(nil)
	_ observability.HTTPHooks     = (*Collector)(nil)
)

// NewCollector creates a collector whose metric names start with
// namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cleanupRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_runs_total",
			Help:      "Cleanup runs that changed the topology",
		}),
		cleanupChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_changes_total",
			Help:      "Topology changes made by cleanup, by kind",
		}, []string{"kind"}),
		cleanupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cleanup_duration_seconds",
			Help:      "Cleanup duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placement_updates_total",
			Help:      "Component placement updates applied to pin nodes",
		}, []string{"queued"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Net extractions, by outcome",
		}, []string{"status"}),
		extractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Net extraction duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		extractedNets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_nets",
			Help:      "Nets found per extraction",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits, by key type",
		}, []string{"key_type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses, by key type",
		}, []string{"key_type"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache, by key type",
		}, []string{"key_type"}),
	}

	c.registry.MustRegister(
		c.httpRequests, c.httpDuration,
		c.cleanupRuns, c.cleanupChanges, c.cleanupDuration, c.placements,
		c.extractions, c.extractDuration, c.extractedNets,
		c.cacheHits, c.cacheMisses, c.cacheBytes,
	)
	return c
}

// Register installs c as the process-wide hooks.
func (c *Collector) Register() {
	observability.SetTopologyHooks(c)
	observability.SetExtractHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

// Registry returns the registry holding c's metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) OnCleanup(_ context.Context, merged, dropped, split, collapsed int, d time.Duration) {
	c.cleanupRuns.Inc()
	c.cleanupChanges.WithLabelValues("merged").Add(float64(merged))
	c.cleanupChanges.WithLabelValues("dropped").Add(float64(dropped))
	c.cleanupChanges.WithLabelValues("split").Add(float64(split))
	c.cleanupChanges.WithLabelValues("collapsed").Add(float64(collapsed))
	c.cleanupDuration.Observe(d.Seconds())
}

func (c *Collector) OnPlacementUpdate(_ context.Context, _ string, _ int, queued bool) {
	c.placements.WithLabelValues(strconv.FormatBool(queued)).Inc()
}

func (c *Collector) OnExtractStart(context.Context, int, int) {}

func (c *Collector) OnExtractComplete(_ context.Context, nets, _ int, d time.Duration, err error) {
	if err != nil {
		c.extractions.WithLabelValues("error").Inc()
		return
	}
	c.extractions.WithLabelValues("ok").Inc()
	c.extractDuration.Observe(d.Seconds())
	c.extractedNets.Observe(float64(nets))
}

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheHits.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheMisses.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (c *Collector) OnRequest(context.Context, string, string) {}

func (c *Collector) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
