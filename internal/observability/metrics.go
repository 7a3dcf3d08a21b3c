// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Engine metrics
	TicksTotal         prometheus.Counter
	SnapshotsDrained   prometheus.Counter
	SnapshotsDropped   prometheus.Counter
	EvaluationsSkipped prometheus.Counter

	// Decision metrics
	DecisionsTotal *prometheus.CounterVec
	ExitsTotal     *prometheus.CounterVec

	// Execution metrics
	ExecutionsTotal *prometheus.CounterVec

	// Position metrics
	OpenPositions   prometheus.Gauge
	RealizedPnl     prometheus.Counter
	RealizedPnlLoss prometheus.Counter

	// Latency metrics
	ExecutionLatency *prometheus.HistogramVec
	AdvisoryLatency  prometheus.Histogram
	TickDuration     prometheus.Histogram

	// Storage metrics
	TradeLogErrors    *prometheus.CounterVec
	SnapshotsArchived prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rug_surfer"
	}

	return &Metrics{
		TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "ticks_total",
			Help:      "Total number of engine ticks",
		}),
		SnapshotsDrained: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "snapshots_drained_total",
			Help:      "Total number of feed snapshots drained",
		}),
		SnapshotsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "snapshots_dropped_total",
			Help:      "Total number of feed snapshots dropped by the bounded queue",
		}),
		EvaluationsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "evaluations_skipped_total",
			Help:      "Total number of evaluations skipped because one was in flight",
		}),
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "decisions_total",
			Help:      "Total number of policy decisions by action",
		}, []string{"action"}),
		ExitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "exits_total",
			Help:      "Total number of exit decisions by reason",
		}, []string{"reason"}),
		ExecutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "orders_total",
			Help:      "Total number of order executions by side and result",
		}, []string{"side", "result"}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "open_positions",
			Help:      "Number of currently open positions",
		}),
		RealizedPnl: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "realized_pnl_gain_total",
			Help:      "Cumulative realized gains in base units",
		}),
		RealizedPnlLoss: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "realized_pnl_loss_total",
			Help:      "Cumulative realized losses in base units",
		}),
		ExecutionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "order_duration_seconds",
			Help:      "Order execution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"side"}),
		AdvisoryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "advisory",
			Name:      "call_duration_seconds",
			Help:      "Advisory call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tick_duration_seconds",
			Help:      "Engine tick duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		TradeLogErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "trade_log_errors_total",
			Help:      "Total number of trade log append failures by store",
		}, []string{"store"}),
		SnapshotsArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "snapshots_archived_total",
			Help:      "Total number of snapshots written to the archive",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRealizedPnl routes a realized pnl amount to the gain or loss counter.
func (m *Metrics) RecordRealizedPnl(pnlBase float64) {
	if pnlBase >= 0 {
		m.RealizedPnl.Add(pnlBase)
	} else {
		m.RealizedPnlLoss.Add(-pnlBase)
	}
}
