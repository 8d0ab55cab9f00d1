package lockllm

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lockllm/lockllm-go/pkg/audit"
	"github.com/lockllm/lockllm-go/pkg/telemetry/metrics"
	"github.com/lockllm/lockllm-go/pkg/usage"
)

// DefaultBaseURL is the hosted gateway endpoint.
const DefaultBaseURL = "https://api.lockllm.com"

// Config holds client construction settings. Zero values fall back to the
// defaults from DefaultConfig; only APIKey is required (it may also come from
// the LOCKLLM_API_KEY environment variable).
type Config struct {
	// APIKey authenticates against the gateway.
	APIKey string

	// BaseURL is the gateway endpoint.
	BaseURL string

	// Timeout bounds a single attempt, not the whole retried call. Per-call
	// deadlines belong on the context.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int

	// DefaultOptions apply to every scan. Per-call options override
	// field-by-field.
	DefaultOptions *ScanOptions

	// HTTPClient, when set, replaces the built-in transport entirely.
	HTTPClient *http.Client

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// Compressor, when set, compresses scan input locally before sending
	// whenever the compression options are in effect.
	Compressor Compressor

	// Logger receives structured request/retry logs. Defaults to
	// slog.Default.
	Logger *slog.Logger

	// Metrics, when set, records scan counts, verdicts, latencies, and
	// retries.
	Metrics *metrics.Collector

	// Audit, when set, receives one record per completed scan.
	Audit *audit.Recorder

	// Usage, when set, accumulates credit consumption per scan.
	Usage *usage.Tracker
}

// DefaultConfig returns the standard client settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		Timeout:             60 * time.Second,
		MaxRetries:          3,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.APIKey == "" {
		c.APIKey = os.Getenv("LOCKLLM_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = def.MaxIdleConns
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = def.IdleConnTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client mediates scan requests through the gateway. It is safe for
// concurrent use.
type Client struct {
	http        *httpClient
	defaultOpts *ScanOptions
	compressor  Compressor
	logger      *slog.Logger
	metrics     *metrics.Collector
	audit       *audit.Recorder
	usage       *usage.Tracker
}

// New builds a client from cfg. It fails fast on missing credentials or
// invalid default options so that misconfiguration never reaches the network.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()

	if cfg.APIKey == "" {
		return nil, newConfigurationError("api key is required: set Config.APIKey or LOCKLLM_API_KEY")
	}
	if cfg.DefaultOptions != nil {
		if err := cfg.DefaultOptions.Validate(); err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger.With("component", "lockllm")
	c := &Client{
		http:        newHTTPClient(cfg, logger),
		defaultOpts: cfg.DefaultOptions,
		compressor:  cfg.Compressor,
		logger:      logger,
		metrics:     cfg.Metrics,
		audit:       cfg.Audit,
		usage:       cfg.Usage,
	}
	if cfg.Metrics != nil {
		c.http.onRetry = cfg.Metrics.RecordRetry
	}
	return c, nil
}

// Close releases pooled connections. The client must not be used afterwards.
// Audit and usage components passed in Config have their own lifecycles and
// are not closed here.
func (c *Client) Close() {
	c.http.close()
}
