package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paradas.buscoruna.org/internal/logging"
	"paradas.buscoruna.org/internal/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("test response"))
})

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := NewRequestIDMiddleware("X-Request-ID")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	t.Run("generates an id when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get("X-Request-ID")
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("reuses the client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "abc-123", seen)
	})

	t.Run("replaces oversized ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 500))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
	})
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)
	m := metrics.NewCollector()

	handler := NewRequestIDMiddleware("X-Request-ID")(
		NewRequestLoggingMiddleware(logger, m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/api/stops?q=praza", nil)
	req.Header.Set("User-Agent", "test-client/1.0")
	req.Header.Set("X-Request-ID", "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	output := buf.String()
	assert.Contains(t, output, `"msg":"http_request"`)
	assert.Contains(t, output, `"method":"GET"`)
	assert.Contains(t, output, `"path":"/api/stops"`)
	assert.Contains(t, output, `"status":418`)
	assert.Contains(t, output, `"user_agent":"test-client/1.0"`)
	assert.Contains(t, output, `"request_id":"req-1"`)
	assert.Contains(t, output, `"component":"http_server"`)
	assert.NotContains(t, output, "praza")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("418")))
}

func TestRequestLoggingDefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

	handler := NewRequestLoggingMiddleware(logger, nil)(okHandler)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, buf.String(), `"status":200`)
}

func TestSecurityHeaders(t *testing.T) {
	secureHandler := NewSecurityMiddleware([]string{"*"}, "X-Request-ID")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	secureHandler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test response", rec.Body.String())

	headers := rec.Header()
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", headers.Get("Strict-Transport-Security"))
	assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
	assert.Contains(t, headers.Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, headers.Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeadersWithCORS(t *testing.T) {
	t.Run("wildcard origin", func(t *testing.T) {
		handler := NewSecurityMiddleware([]string{"*"}, "X-Request-ID")(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		handler := NewSecurityMiddleware([]string{"https://buses.example"}, "X-Request-ID")(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
		req.Header.Set("Origin", "https://buses.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://buses.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unlisted origin gets no CORS headers", func(t *testing.T) {
		handler := NewSecurityMiddleware([]string{"https://buses.example"}, "X-Request-ID")(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecurityHeadersPreflight(t *testing.T) {
	handler := NewSecurityMiddleware([]string{"https://buses.example"}, "X-Request-ID")(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/stops", nil)
	req.Header.Set("Origin", "https://buses.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"test": "data"}`, 1000)
	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(large))
	}))

	t.Run("compresses when accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		reader, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, large, string(body))
	})

	t.Run("plain without accept encoding", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, large, rec.Body.String())
	})

	t.Run("small responses stay plain", func(t *testing.T) {
		small := CompressionMiddleware(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		small.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "test response", rec.Body.String())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over the limit", func(t *testing.T) {
		rl := NewRateLimitMiddleware(3, time.Second)
		defer rl.Stop()
		handler := rl.Handler(okHandler)

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.JSONEq(t, `{"detail":"rate_limit_exceeded","code":429}`, rec.Body.String())
	})

	t.Run("limits each client separately", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1, time.Second)
		defer rl.Stop()
		handler := rl.Handler(okHandler)

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			req := httptest.NewRequest(http.MethodGet, "/api/stops", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, addr)
		}
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		rl := NewRateLimitMiddleware(0, time.Second)
		defer rl.Stop()
		handler := rl.Handler(okHandler)

		for i := 0; i < 50; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stops", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		rl := NewRateLimitMiddleware(5, time.Second)
		rl.Stop()
		rl.Stop()
	})
}
