package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics tracks metrics for gateway scan calls.
//
// Metrics:
//   - lockllm_client_scans_total: scan count by mode and verdict
//   - lockllm_client_scan_duration_seconds: scan latency histogram by mode
//   - lockllm_client_errors_total: failed calls by error class
//   - lockllm_client_retries_total: retry attempts
//   - lockllm_client_cache_total: proxy cache hits and misses
//   - lockllm_client_credits_remaining: last reported credit balance
type ScanMetrics struct {
	scansTotal       *prometheus.CounterVec
	scanDuration     *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	retriesTotal     prometheus.Counter
	cacheTotal       *prometheus.CounterVec
	creditsRemaining prometheus.Gauge
}

// NewScanMetrics creates and registers scan metrics with the provided
// registry.
func NewScanMetrics(cfg Config, registry *prometheus.Registry) *ScanMetrics {
	sm := &ScanMetrics{
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "scans_total",
				Help:      "Total number of scan calls completed",
			},
			[]string{"mode", "verdict"},
		),

		scanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "scan_duration_seconds",
				Help:      "Duration of scan calls in seconds, including retries",
				Buckets:   cfg.ScanDurationBuckets,
			},
			[]string{"mode"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "errors_total",
				Help:      "Total number of failed calls by error class",
			},
			[]string{"kind"},
		),

		retriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retries_total",
				Help:      "Total number of retry attempts",
			},
		),

		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_total",
				Help:      "Proxy response cache outcomes",
			},
			[]string{"status"},
		),

		creditsRemaining: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "credits_remaining",
				Help:      "Last reported credit balance",
			},
		),
	}

	registry.MustRegister(
		sm.scansTotal,
		sm.scanDuration,
		sm.errorsTotal,
		sm.retriesTotal,
		sm.cacheTotal,
		sm.creditsRemaining,
	)

	return sm
}

// RecordScan records a completed scan.
func (sm *ScanMetrics) RecordScan(mode string, safe bool, duration time.Duration) {
	verdict := "safe"
	if !safe {
		verdict = "flagged"
	}
	sm.scansTotal.WithLabelValues(mode, verdict).Inc()
	sm.scanDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordError records a failed call.
func (sm *ScanMetrics) RecordError(kind string) {
	sm.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRetry records one retry attempt.
func (sm *ScanMetrics) RecordRetry() {
	sm.retriesTotal.Inc()
}

// RecordCacheStatus records a proxy cache outcome.
func (sm *ScanMetrics) RecordCacheStatus(status string) {
	sm.cacheTotal.WithLabelValues(status).Inc()
}

// SetCreditsRemaining updates the credit balance gauge.
func (sm *ScanMetrics) SetCreditsRemaining(credits float64) {
	sm.creditsRemaining.Set(credits)
}
