package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aizatto/favicons/internal/favicon"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "favicon_resolutions_total",
				Help: "Total number of favicon resolutions, labeled by the strategy that produced the icon.",
			},
			[]string{"source"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_server_requests_total",
				Help: "Total number of HTTP requests handled by the server, labeled by status code.",
			},
			[]string{"code"},
		),
	}
	m.registry.MustRegister(m.resolutions, m.requests)
	return m
}

func (m *Metrics) observeResolution(source favicon.Source) {
	m.resolutions.WithLabelValues(string(source)).Inc()
}

func (m *Metrics) observeRequest(status int) {
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}
