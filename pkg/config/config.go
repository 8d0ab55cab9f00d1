// Package config loads client configuration from YAML with environment
// overrides, and can assemble a fully wired client from it: logging,
// metrics, audit trail, and usage tracking included.
package config

import (
	"fmt"
	"time"

	"github.com/lockllm/lockllm-go/pkg/audit"
	"github.com/lockllm/lockllm-go/pkg/lockllm"
	"github.com/lockllm/lockllm-go/pkg/telemetry/logging"
	"github.com/lockllm/lockllm-go/pkg/telemetry/metrics"
	"github.com/lockllm/lockllm-go/pkg/usage"
)

// Config is the root configuration document.
type Config struct {
	// APIKey authenticates against the gateway. Usually supplied via the
	// LOCKLLM_API_KEY environment variable rather than the file.
	APIKey string `yaml:"api_key"`

	// BaseURL is the gateway endpoint.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single request attempt.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int `yaml:"max_retries"`

	// Scan holds default scan options applied to every call.
	Scan ScanConfig `yaml:"scan"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metric collection.
	Metrics metrics.Config `yaml:"metrics"`

	// Audit configures the local audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Usage configures local consumption tracking.
	Usage UsageConfig `yaml:"usage"`
}

// ScanConfig mirrors the per-scan options in YAML form. Empty strings and
// nil values mean unset: the gateway supplies its own defaults, never the
// client.
type ScanConfig struct {
	Sensitivity     string   `yaml:"sensitivity"`
	ScanMode        string   `yaml:"scan_mode"`
	ScanAction      string   `yaml:"scan_action"`
	PolicyAction    string   `yaml:"policy_action"`
	AbuseAction     string   `yaml:"abuse_action"`
	PIIAction       string   `yaml:"pii_action"`
	Compression     string   `yaml:"compression"`
	CompressionRate *float64 `yaml:"compression_rate"`
	Chunk           *bool    `yaml:"chunk"`
	RouteAction     string   `yaml:"route_action"`
	CacheResponse   *bool    `yaml:"cache_response"`
	CacheTTL        *int     `yaml:"cache_ttl"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	AddSource     bool   `yaml:"add_source"`
	RedactSecrets bool   `yaml:"redact_secrets"`
}

// AuditConfig configures the audit recorder and its storage.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite file for audit records. Empty means in-memory.
	DBPath string `yaml:"db_path"`

	AsyncBuffer  int           `yaml:"async_buffer"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention limits.
	RetentionDays int    `yaml:"retention_days"`
	PruneSchedule string `yaml:"prune_schedule"`
	MaxRecords    int64  `yaml:"max_records"`
}

// UsageConfig configures local usage tracking.
type UsageConfig struct {
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite file for usage samples. Empty means no
	// persistence.
	DBPath string `yaml:"db_path"`

	Limits usage.Config `yaml:"limits"`
}

// ScanOptions converts the YAML scan section to typed options. Only set
// fields are carried over.
func (sc *ScanConfig) ScanOptions() *lockllm.ScanOptions {
	opts := &lockllm.ScanOptions{}
	empty := true

	if sc.Sensitivity != "" {
		opts.Sensitivity = lockllm.Ptr(lockllm.Sensitivity(sc.Sensitivity))
		empty = false
	}
	if sc.ScanMode != "" {
		opts.ScanMode = lockllm.Ptr(lockllm.ScanMode(sc.ScanMode))
		empty = false
	}
	if sc.ScanAction != "" {
		opts.ScanAction = lockllm.Ptr(lockllm.ScanAction(sc.ScanAction))
		empty = false
	}
	if sc.PolicyAction != "" {
		opts.PolicyAction = lockllm.Ptr(lockllm.ScanAction(sc.PolicyAction))
		empty = false
	}
	if sc.AbuseAction != "" {
		opts.AbuseAction = lockllm.Ptr(lockllm.ScanAction(sc.AbuseAction))
		empty = false
	}
	if sc.PIIAction != "" {
		opts.PIIAction = lockllm.Ptr(lockllm.PIIAction(sc.PIIAction))
		empty = false
	}
	if sc.Compression != "" {
		opts.Compression = lockllm.Ptr(lockllm.CompressionMethod(sc.Compression))
		empty = false
	}
	if sc.CompressionRate != nil {
		opts.CompressionRate = lockllm.Ptr(*sc.CompressionRate)
		empty = false
	}
	if sc.Chunk != nil {
		opts.Chunk = lockllm.Ptr(*sc.Chunk)
		empty = false
	}
	if sc.RouteAction != "" {
		opts.RouteAction = lockllm.Ptr(lockllm.RouteAction(sc.RouteAction))
		empty = false
	}
	if sc.CacheResponse != nil {
		opts.CacheResponse = lockllm.Ptr(*sc.CacheResponse)
		empty = false
	}
	if sc.CacheTTL != nil {
		opts.CacheTTL = lockllm.Ptr(*sc.CacheTTL)
		empty = false
	}

	if empty {
		return nil
	}
	return opts
}

// BuildClient assembles a client and its supporting components from the
// configuration. The returned shutdown function flushes the audit trail and
// releases storage; call it after Client.Close.
func (c *Config) BuildClient() (*lockllm.Client, func() error, error) {
	logger, err := logging.New(logging.Config{
		Level:         c.Logging.Level,
		Format:        c.Logging.Format,
		AddSource:     c.Logging.AddSource,
		RedactSecrets: c.Logging.RedactSecrets,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	clientCfg := lockllm.Config{
		APIKey:         c.APIKey,
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		MaxRetries:     c.MaxRetries,
		DefaultOptions: c.Scan.ScanOptions(),
		Logger:         logger.Slog(),
	}

	if c.Metrics.Enabled {
		clientCfg.Metrics = metrics.NewCollector(c.Metrics, nil)
	}

	var cleanups []func() error
	cleanup := func() error {
		var firstErr error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	if c.Audit.Enabled {
		var store audit.Storage
		if c.Audit.DBPath != "" {
			sqliteCfg := audit.DefaultSQLiteConfig()
			sqliteCfg.Path = c.Audit.DBPath
			store, err = audit.NewSQLiteStorage(sqliteCfg)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to open audit storage: %w", err)
			}
		} else {
			store = audit.NewMemoryStorage()
		}

		recorder := audit.NewRecorder(store, &audit.RecorderConfig{
			Enabled:      true,
			AsyncBuffer:  c.Audit.AsyncBuffer,
			WriteTimeout: c.Audit.WriteTimeout,
		})
		clientCfg.Audit = recorder
		cleanups = append(cleanups, recorder.Close, store.Close)
	}

	if c.Usage.Enabled {
		var tracker *usage.Tracker
		if c.Usage.DBPath != "" {
			store, err := usage.NewStore(c.Usage.DBPath)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to open usage storage: %w", err)
			}
			tracker, err = usage.NewPersistentTracker(c.Usage.Limits, store)
			if err != nil {
				store.Close()
				cleanup()
				return nil, nil, fmt.Errorf("failed to build usage tracker: %w", err)
			}
		} else {
			tracker = usage.NewTracker(c.Usage.Limits)
		}
		clientCfg.Usage = tracker
		cleanups = append(cleanups, tracker.Close)
	}

	client, err := lockllm.New(clientCfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return client, cleanup, nil
}
