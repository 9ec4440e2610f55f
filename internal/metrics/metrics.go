// Package metrics exposes the storefront's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Mutation outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
)

// Metrics groups every collector the service registers.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	CartMutations       *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	QuotesCreated       prometheus.Counter
	CatalogProducts     prometheus.Gauge
	DeliveryDistricts   prometheus.Gauge
	ActiveSessions      prometheus.Gauge
}

// New registers the collectors on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		PersistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_persistence_failures_total",
			Help:      "Failed cart state loads and saves.",
		}, []string{"op"}),
		QuotesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_created_total",
			Help:      "Quotation requests accepted.",
		}),
		CatalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Products loaded into the catalog.",
		}),
		DeliveryDistricts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delivery_rate_districts",
			Help:      "Districts with a delivery rate.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_sessions",
			Help:      "Cart sessions held in memory.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.CartMutations,
		m.PersistenceFailures,
		m.QuotesCreated,
		m.CatalogProducts,
		m.DeliveryDistricts,
		m.ActiveSessions,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// CartMutation counts one mutation attempt.
func (m *Metrics) CartMutation(op string, applied bool) {
	if m == nil {
		return
	}
	outcome := OutcomeIgnored
	if applied {
		outcome = OutcomeApplied
	}
	m.CartMutations.WithLabelValues(op, outcome).Inc()
}

// PersistenceFailure counts a failed cart store call.
func (m *Metrics) PersistenceFailure(op string) {
	if m == nil {
		return
	}
	m.PersistenceFailures.WithLabelValues(op).Inc()
}

// QuoteCreated counts an accepted quotation request.
func (m *Metrics) QuoteCreated() {
	if m == nil {
		return
	}
	m.QuotesCreated.Inc()
}

// SetCatalogSize records how many products and rated districts were loaded.
func (m *Metrics) SetCatalogSize(products, districts int) {
	if m == nil {
		return
	}
	m.CatalogProducts.Set(float64(products))
	m.DeliveryDistricts.Set(float64(districts))
}

// SetSessions records how many cart sessions are held in memory.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
