package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCartMutation(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.CartMutation("add", true)
	m.CartMutation("add", true)
	m.CartMutation("add", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add", OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add", OutcomeIgnored)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.CartMutation("add", true)
	m.PersistenceFailure("save_cart")
	m.QuoteCreated()
	m.SetCatalogSize(1, 1)
	m.SetSessions(1)
}

func TestSetCatalogSize(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.SetCatalogSize(12, 3)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.CatalogProducts))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DeliveryDistricts))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewWithRegistry(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/p1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/products/:id", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "storefront_http_requests_total"))
}
