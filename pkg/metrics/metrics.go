package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAnalysis records one analysis operation.
func (r *Registry) RecordAnalysis(operation, status string, duration time.Duration, resultSize int) {
	r.AnalysisOpsTotal.WithLabelValues(operation, status).Inc()
	r.AnalysisOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if status == "ok" {
		r.AnalysisResultSize.WithLabelValues(operation).Observe(float64(resultSize))
	}
}

// RecordRefresh records a snapshot refresh attempt.
func (r *Registry) RecordRefresh(status string, duration time.Duration) {
	r.SnapshotRefreshesTotal.WithLabelValues(status).Inc()
	r.SnapshotRefreshDuration.Observe(duration.Seconds())
}

// SetSnapshotStats publishes the size and age of the current snapshot.
func (r *Registry) SetSnapshotStats(entitiesByKind map[string]int, edges int, builtAt time.Time) {
	for kind, n := range entitiesByKind {
		r.SnapshotEntities.WithLabelValues(kind).Set(float64(n))
	}
	r.SnapshotEdges.Set(float64(edges))
	r.SnapshotBuiltTimestamp.Set(float64(builtAt.Unix()))
}
