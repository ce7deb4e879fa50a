package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector()

	c.ObserveUpstream(EndpointStops, nil, 20*time.Millisecond)
	c.ObserveUpstream(EndpointStops, assert.AnError, time.Second)
	c.ObserveUpstream(EndpointArrivals, nil, time.Millisecond)
	c.CatalogRefreshed(RefreshFresh, 12)
	c.CatalogRefreshed(RefreshStale, 12)
	c.CatalogHit()
	c.CatalogHit()
	c.HTTPRequest(http.StatusOK)
	c.HTTPRequest(http.StatusBadGateway)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpstreamRequests.WithLabelValues(EndpointStops, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpstreamRequests.WithLabelValues(EndpointStops, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpstreamRequests.WithLabelValues(EndpointArrivals, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CatalogRefreshes.WithLabelValues(RefreshFresh)))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.CatalogStops))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CatalogCacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("502")))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveUpstream(EndpointStops, nil, time.Second)
		c.CatalogRefreshed(RefreshPlaceholder, 1)
		c.CatalogHit()
		c.HTTPRequest(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.CatalogHit()

	server := httptest.NewServer(c.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "paradas_catalog_cache_hits_total")
}
