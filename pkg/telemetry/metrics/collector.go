package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics Collector.
type Config struct {
	// Enabled toggles all metric recording. When false every Record method
	// is a no-op.
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace (default "lockllm").
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem (default "client").
	Subsystem string `yaml:"subsystem"`

	// ScanDurationBuckets are histogram buckets in seconds for scan
	// latencies.
	ScanDurationBuckets []float64 `yaml:"scan_duration_buckets"`
}

// Collector records client-side metrics for gateway interactions: scan
// counts and latencies, error classes, retry pressure, and proxy cache
// effectiveness. All methods are safe for concurrent use.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	scanMetrics *ScanMetrics
}

// NewCollector creates a metrics collector registered against registry. If
// registry is nil a fresh one is created; expose it with promhttp:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "lockllm"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "client"
	}
	if len(cfg.ScanDurationBuckets) == 0 {
		// Scans are fast (tens of ms) but retried calls can stretch to the
		// backoff cap.
		cfg.ScanDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0, 30.0, 60.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}
	c.scanMetrics = NewScanMetrics(cfg, registry)
	return c
}

// RecordScan records a completed scan with its verdict and total duration
// including retries.
func (c *Collector) RecordScan(mode string, safe bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.scanMetrics.RecordScan(mode, safe, duration)
}

// RecordError records a failed call by error class ("rate_limit",
// "prompt_injection", "network", ...).
func (c *Collector) RecordError(kind string) {
	if !c.config.Enabled {
		return
	}
	c.scanMetrics.RecordError(kind)
}

// RecordRetry records one retry attempt.
func (c *Collector) RecordRetry() {
	if !c.config.Enabled {
		return
	}
	c.scanMetrics.RecordRetry()
}

// RecordCacheStatus records the gateway's cache verdict for a proxied
// request, "hit" or "miss".
func (c *Collector) RecordCacheStatus(status string) {
	if !c.config.Enabled {
		return
	}
	c.scanMetrics.RecordCacheStatus(status)
}

// SetCreditsRemaining updates the last-reported credit balance gauge.
func (c *Collector) SetCreditsRemaining(credits float64) {
	if !c.config.Enabled {
		return
	}
	c.scanMetrics.SetCreditsRemaining(credits)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
