package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus collectors for the engine. Collectors are
// grouped by area in init_*.go files.
type Registry struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Analysis metrics
	AnalysisOpsTotal   *prometheus.CounterVec
	AnalysisOpDuration *prometheus.HistogramVec
	AnalysisResultSize *prometheus.HistogramVec

	// Snapshot metrics
	SnapshotRefreshesTotal  *prometheus.CounterVec
	SnapshotRefreshDuration prometheus.Histogram
	SnapshotEntities        *prometheus.GaugeVec
	SnapshotEdges           prometheus.Gauge
	SnapshotBuiltTimestamp  prometheus.Gauge
}

// NewRegistry creates a registry with all collectors registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initHTTPMetrics()
	r.initAnalysisMetrics()
	r.initSnapshotMetrics()
	return r
}

// Handler returns an HTTP handler exposing the registry in Prometheus
// text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
