// Package metrics exposes Prometheus instrumentation for aggregation
// passes. Metrics register against the default registry via promauto, so
// any process-level /metrics handler picks them up.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregationPasses counts completed aggregation passes.
	// Labels: dimension, status (ok, error)
	AggregationPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demandview",
		Subsystem: "aggregate",
		Name:      "passes_total",
		Help:      "Total aggregation passes by dimension and status",
	}, []string{"dimension", "status"})

	// AggregationDuration measures full-pass latency.
	// Labels: dimension
	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "demandview",
		Subsystem: "aggregate",
		Name:      "duration_seconds",
		Help:      "Aggregation pass latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"dimension"})

	// MemoLookups counts result-cache lookups.
	// Labels: outcome (hit, miss)
	MemoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demandview",
		Subsystem: "memo",
		Name:      "lookups_total",
		Help:      "Total memoized-result lookups by outcome",
	}, []string{"outcome"})

	// DatasetLoads counts dataset loads.
	// Labels: source (manifest, fallback), status (ok, error)
	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demandview",
		Subsystem: "loader",
		Name:      "loads_total",
		Help:      "Total dataset loads by source and status",
	}, []string{"source", "status"})
)
