package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the flux matrix engine
type Metrics struct {
	// Insert/read path metrics
	InsertsTotal    prometheus.Counter
	InsertDuration  prometheus.Histogram
	GetsTotal       prometheus.Counter
	GetHitsTotal    prometheus.Counter
	GetMissesTotal  prometheus.Counter
	QueriesTotal    prometheus.Counter
	QueryDuration   prometheus.Histogram
	QueryResultSize prometheus.Histogram

	// Version authority
	CurrentVersion prometheus.Gauge

	// Index metrics
	OccupiedPositions prometheus.Gauge
	LogLength         prometheus.Gauge
	AttributeBuckets  *prometheus.GaugeVec

	// Snapshot metrics
	SnapshotsTotal    prometheus.Counter
	SnapshotDuration  prometheus.Histogram
	SnapshotsRetained prometheus.Gauge
	SnapshotGCsTotal  prometheus.Counter
	SnapshotsDropped  prometheus.Counter

	// Judgment metrics
	JudgmentsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(nodeID string) *Metrics {
	labels := prometheus.Labels{"node_id": nodeID}

	return &Metrics{
		InsertsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "inserts_total",
			Help:        "Total number of inserts",
			ConstLabels: labels,
		}),
		InsertDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "insert_duration_seconds",
			Help:        "Histogram of insert durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		GetsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "gets_total",
			Help:        "Total number of position reads",
			ConstLabels: labels,
		}),
		GetHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "get_hits_total",
			Help:        "Position reads that found a record",
			ConstLabels: labels,
		}),
		GetMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "get_misses_total",
			Help:        "Position reads that found nothing",
			ConstLabels: labels,
		}),
		QueriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "attribute_queries_total",
			Help:        "Total number of attribute range queries",
			ConstLabels: labels,
		}),
		QueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "attribute_query_duration_seconds",
			Help:        "Histogram of attribute range query durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		QueryResultSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "attribute_query_results",
			Help:        "Histogram of attribute range query result counts",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		}),
		CurrentVersion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "engine",
			Name:        "current_version",
			Help:        "Most recently issued version number",
			ConstLabels: labels,
		}),
		OccupiedPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "index",
			Name:        "occupied_positions",
			Help:        "Number of positions holding a record",
			ConstLabels: labels,
		}),
		LogLength: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "index",
			Name:        "insertion_log_length",
			Help:        "Number of records in the insertion log",
			ConstLabels: labels,
		}),
		AttributeBuckets: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "index",
			Name:        "attribute_buckets",
			Help:        "Number of quantized buckets per attribute name",
			ConstLabels: labels,
		}, []string{"attribute"}),
		SnapshotsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "snapshot",
			Name:        "captures_total",
			Help:        "Total number of snapshots captured",
			ConstLabels: labels,
		}),
		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "snapshot",
			Name:        "capture_duration_seconds",
			Help:        "Histogram of snapshot capture durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		SnapshotsRetained: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "snapshot",
			Name:        "retained",
			Help:        "Number of snapshots currently retained",
			ConstLabels: labels,
		}),
		SnapshotGCsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "snapshot",
			Name:        "gc_runs_total",
			Help:        "Total number of snapshot GC runs",
			ConstLabels: labels,
		}),
		SnapshotsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "snapshot",
			Name:        "dropped_total",
			Help:        "Total number of snapshots removed by GC",
			ConstLabels: labels,
		}),
		JudgmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "fluxmatrix",
			Subsystem:   "anchor",
			Name:        "judgments_total",
			Help:        "Total judgments by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}
}
