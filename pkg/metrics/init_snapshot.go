package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSnapshotMetrics() {
	r.SnapshotRefreshesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attackgraph_snapshot_refreshes_total",
			Help: "Total number of snapshot refresh attempts",
		},
		[]string{"status"},
	)

	r.SnapshotRefreshDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attackgraph_snapshot_refresh_duration_seconds",
			Help:    "Snapshot fetch and build duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.SnapshotEntities = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "attackgraph_snapshot_entities",
			Help: "Number of entities in the published snapshot",
		},
		[]string{"kind"},
	)

	r.SnapshotEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attackgraph_snapshot_edges",
			Help: "Number of relationship edges in the published snapshot",
		},
	)

	r.SnapshotBuiltTimestamp = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attackgraph_snapshot_built_timestamp_seconds",
			Help: "Unix timestamp of the published snapshot build",
		},
	)
}
