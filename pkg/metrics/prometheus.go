package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses    *prometheus.CounterVec
	lastScore   *prometheus.GaugeVec
	scanned     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	trades      *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analyses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingdesk_analyses_total",
				Help: "Total number of symbol analyses completed",
			},
			[]string{"symbol"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "swingdesk_last_score",
				Help: "Last composite score for a symbol",
			},
			[]string{"symbol"},
		),
		scanned: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingdesk_scan_symbols_total",
				Help: "Symbols scanned per market",
			},
			[]string{"market"},
		),
		skipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingdesk_scan_skipped_total",
				Help: "Symbols skipped during scans per market",
			},
			[]string{"market"},
		),
		trades: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingdesk_trades_total",
				Help: "Ledger trades committed",
			},
			[]string{"currency", "action"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingdesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swingdesk_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records one completed analysis and its score.
func (r *Recorder) RecordAnalysis(symbol string, score float64) {
	r.analyses.WithLabelValues(symbol).Inc()
	r.lastScore.WithLabelValues(symbol).Set(score)
}

// RecordScan records per-market scan volume and skip counts.
func (r *Recorder) RecordScan(market string, scanned, skipped int) {
	r.scanned.WithLabelValues(market).Add(float64(scanned))
	r.skipped.WithLabelValues(market).Add(float64(skipped))
}

// RecordTrade records a committed ledger trade.
func (r *Recorder) RecordTrade(currency, action string) {
	r.trades.WithLabelValues(currency, action).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
