package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP surface and the
// provider gateways. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInflight  prometheus.Gauge
	providerCalls *prometheus.CounterVec
	providerTime  *prometheus.HistogramVec
	generations   *prometheus.CounterVec
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soart_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soart_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "soart_http_requests_inflight",
			Help: "HTTP requests currently being served.",
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soart_provider_calls_total",
			Help: "Upstream provider calls by provider, operation and status.",
		}, []string{"provider", "operation", "status"}),
		providerTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soart_provider_call_duration_seconds",
			Help:    "Upstream provider call latency.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "operation"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soart_image_generations_total",
			Help: "Image generation outcomes by reason; success uses reason=\"ok\".",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration, m.httpInflight,
		m.providerCalls, m.providerTime, m.generations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.httpInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.httpInflight.Dec()
	}
}

// ObserveProvider records one upstream call. status is "success" or "error".
func (m *Metrics) ObserveProvider(provider, operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, operation, status).Inc()
	m.providerTime.WithLabelValues(provider, operation).Observe(dur.Seconds())
}

func (m *Metrics) IncGeneration(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "ok"
	}
	m.generations.WithLabelValues(reason).Inc()
}
