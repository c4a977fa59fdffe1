package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	reportLoads         *prometheus.CounterVec
	reportLoadDuration  prometheus.Histogram
	reportsLoaded       prometheus.Gauge
	markersRendered     *prometheus.HistogramVec
}

// New creates a fresh Metrics registry with HTTP, report loading and map rendering metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloud_snitch",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by the map server",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cloud_snitch",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the map server",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	reportLoads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloud_snitch",
		Name:      "report_loads_total",
		Help:      "Report fetches by outcome (fetched, cached, failed)",
	}, []string{"outcome"})

	reportLoadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cloud_snitch",
		Name:      "report_load_duration_seconds",
		Help:      "Duration of a full report load, from metadata to combined report",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	})

	reportsLoaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cloud_snitch",
		Name:      "reports_loaded",
		Help:      "Number of reports folded into the currently served combined report",
	})

	markersRendered := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cloud_snitch",
		Name:      "markers_rendered",
		Help:      "Number of markers produced per map view",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"type"})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		reportLoads,
		reportLoadDuration,
		reportsLoaded,
		markersRendered,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		reportLoads:         reportLoads,
		reportLoadDuration:  reportLoadDuration,
		reportsLoaded:       reportsLoaded,
		markersRendered:     markersRendered,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// IncReportLoad counts one report fetch outcome.
func (m *Metrics) IncReportLoad(outcome string) {
	if m == nil {
		return
	}
	m.reportLoads.WithLabelValues(outcome).Inc()
}

// ObserveReportLoad records a completed load of loaded reports.
func (m *Metrics) ObserveReportLoad(loaded int, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportsLoaded.Set(float64(loaded))
	m.reportLoadDuration.Observe(duration.Seconds())
}

// ObserveMarkers records how many markers of each type a map view produced.
func (m *Metrics) ObserveMarkers(countsByType map[string]int) {
	if m == nil {
		return
	}
	for markerType, n := range countsByType {
		m.markersRendered.WithLabelValues(markerType).Observe(float64(n))
	}
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
