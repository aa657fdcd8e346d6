package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape serves one request against the provider's Prometheus handler and
// returns the exposition body.
func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)
	return w.Body.String()
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(t *testing.T) (*gin.Engine, *Provider) {
		t.Helper()
		provider, err := NewProvider("envelope")
		require.NoError(t, err)
		t.Cleanup(func() {
			assert.NoError(t, provider.Shutdown(context.Background()))
		})

		router := gin.New()
		router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "envelope"))
		return router, provider
	}

	t.Run("Success_RecordHTTPMetrics", func(t *testing.T) {
		router, provider := newRouter(t)
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		output := scrape(t, provider)
		assertBizMetricLine(
			t,
			output,
			`envelope_http_requests_total`,
			`method="GET".*path="/health".*status_code="200"`,
			`1`,
		)
		assertBizMetricLine(
			t,
			output,
			`envelope_http_request_duration_seconds_count`,
			`method="GET".*path="/health".*status_code="200"`,
			`1`,
		)
	})

	t.Run("Success_RoutePatternCollapsesParams", func(t *testing.T) {
		router, provider := newRouter(t)
		router.GET("/deks/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
		})

		for _, id := range []string{"123", "456"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/deks/"+id, nil)
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		}

		// Both requests land on the route-pattern series, never one per id.
		output := scrape(t, provider)
		assertBizMetricLine(
			t,
			output,
			`envelope_http_requests_total`,
			`path="/deks/:id"`,
			`2`,
		)
		assert.NotContains(t, output, `path="/deks/123"`)
		assert.NotContains(t, output, `path="/deks/456"`)
	})

	t.Run("Success_UnmatchedRoutesShareOneSeries", func(t *testing.T) {
		router, provider := newRouter(t)

		for _, path := range []string{"/nope", "/admin.php", "/.env"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusNotFound, w.Code)
		}

		output := scrape(t, provider)
		assertBizMetricLine(
			t,
			output,
			`envelope_http_requests_total`,
			`path="unknown".*status_code="404"`,
			`3`,
		)
		assert.NotContains(t, output, `path="/admin.php"`)
	})

	t.Run("Success_StatusCodeLabelFollowsResponse", func(t *testing.T) {
		router, provider := newRouter(t)
		router.GET("/ready", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		output := scrape(t, provider)
		assertBizMetricLine(
			t,
			output,
			`envelope_http_requests_total`,
			`path="/ready".*status_code="503"`,
			`1`,
		)
	})
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"route pattern passes through", "/deks/:id", "/deks/:id"},
		{"wildcard pattern passes through", "/files/*path", "/files/*path"},
		{"root path passes through", "/", "/"},
		{"no matched route maps to unknown", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}
