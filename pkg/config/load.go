package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lockllm/lockllm-go/pkg/lockllm"
	"github.com/robfig/cron/v3"
)

// Load reads configuration from a YAML file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// LoadWithEnvOverrides loads the file, then applies LOCKLLM_* environment
// variables on top and validates again. Environment wins over the file.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration after environment overrides: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration usable without a file: environment for
// the API key, gateway defaults for everything else.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = lockllm.DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "lockllm"
	}
	if c.Metrics.Subsystem == "" {
		c.Metrics.Subsystem = "client"
	}

	if c.Audit.AsyncBuffer == 0 {
		c.Audit.AsyncBuffer = 1000
	}
	if c.Audit.WriteTimeout == 0 {
		c.Audit.WriteTimeout = 5 * time.Second
	}
	if c.Audit.RetentionDays == 0 {
		c.Audit.RetentionDays = 90
	}
	if c.Audit.PruneSchedule == "" {
		c.Audit.PruneSchedule = "0 3 * * *"
	}
}

// Validate checks the configuration for inconsistencies. The API key is not
// required here: it may arrive via the environment or the client config.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}

	if opts := c.Scan.ScanOptions(); opts != nil {
		if err := opts.Validate(); err != nil {
			return fmt.Errorf("invalid scan defaults: %w", err)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}

	if c.Audit.Enabled {
		if c.Audit.AsyncBuffer <= 0 {
			return fmt.Errorf("audit async_buffer must be positive, got %d", c.Audit.AsyncBuffer)
		}
		if c.Audit.RetentionDays < 0 {
			return fmt.Errorf("audit retention_days must not be negative, got %d", c.Audit.RetentionDays)
		}
		if c.Audit.PruneSchedule != "" {
			if _, err := cron.ParseStandard(c.Audit.PruneSchedule); err != nil {
				return fmt.Errorf("invalid audit prune_schedule %q: %w", c.Audit.PruneSchedule, err)
			}
		}
	}

	if c.Usage.Enabled {
		if c.Usage.Limits.AlertThreshold < 0 || c.Usage.Limits.AlertThreshold > 1 {
			return fmt.Errorf("usage alert_threshold must be between 0 and 1, got %g", c.Usage.Limits.AlertThreshold)
		}
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LOCKLLM_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("LOCKLLM_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("LOCKLLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("LOCKLLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("LOCKLLM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOCKLLM_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("LOCKLLM_SENSITIVITY"); v != "" {
		c.Scan.Sensitivity = v
	}
	if v := os.Getenv("LOCKLLM_SCAN_MODE"); v != "" {
		c.Scan.ScanMode = v
	}
	if v := os.Getenv("LOCKLLM_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("LOCKLLM_AUDIT_DB_PATH"); v != "" {
		c.Audit.DBPath = v
	}
	if v := os.Getenv("LOCKLLM_USAGE_DB_PATH"); v != "" {
		c.Usage.DBPath = v
	}
}
