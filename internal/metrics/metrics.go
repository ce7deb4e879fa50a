package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream endpoint labels.
const (
	EndpointStops    = "stops"
	EndpointArrivals = "arrivals"
	EndpointOther    = "other"
)

// Catalog refresh outcomes.
const (
	RefreshFresh       = "fresh"
	RefreshStale       = "stale"
	RefreshPlaceholder = "placeholder"
)

// Collector owns a private registry with the service's metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec // labels: endpoint, outcome
	UpstreamDuration *prometheus.HistogramVec

	CatalogRefreshes *prometheus.CounterVec // label: outcome
	CatalogCacheHits prometheus.Counter
	CatalogStops     prometheus.Gauge

	HTTPRequests *prometheus.CounterVec // label: code
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paradas_upstream_requests_total",
			Help: "Requests sent to the transit API.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paradas_upstream_request_duration_seconds",
			Help:    "Duration of transit API requests.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"endpoint"}),
		CatalogRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paradas_catalog_refreshes_total",
			Help: "Stop catalog refresh attempts by outcome.",
		}, []string{"outcome"}),
		CatalogCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paradas_catalog_cache_hits_total",
			Help: "Stop catalog reads served from cache without refreshing.",
		}),
		CatalogStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "paradas_catalog_stops",
			Help: "Number of stops in the cached catalog.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paradas_http_requests_total",
			Help: "HTTP requests served, by status code.",
		}, []string{"code"}),
	}

	reg.MustRegister(
		c.UpstreamRequests, c.UpstreamDuration,
		c.CatalogRefreshes, c.CatalogCacheHits, c.CatalogStops,
		c.HTTPRequests,
		collectors.NewGoCollector(),
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveUpstream(endpoint string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	c.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (c *Collector) CatalogRefreshed(outcome string, stops int) {
	if c == nil {
		return
	}
	c.CatalogRefreshes.WithLabelValues(outcome).Inc()
	c.CatalogStops.Set(float64(stops))
}

func (c *Collector) CatalogHit() {
	if c == nil {
		return
	}
	c.CatalogCacheHits.Inc()
}

func (c *Collector) HTTPRequest(status int) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}
