// Package telemetry provides observability for the LockLLM client.
//
// # Components
//
//   - logging: structured slog output with secret redaction
//   - metrics: Prometheus collectors for scan activity
//
// Both are optional. The client works without either; wire them through
// lockllm.Config (or let config.BuildClient do it) when you want visibility
// into scan verdicts, retries, and credit balances.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//
//	client, err := lockllm.New(lockllm.Config{
//		APIKey:  os.Getenv("LOCKLLM_API_KEY"),
//		Logger:  logger.Slog(),
//		Metrics: collector,
//	})
//
// # Secret Redaction
//
// The logger redacts API keys and Authorization headers from log values by
// default: sk_live_abc123 becomes sk_***. Custom patterns can be added
// through logging.Config.RedactPatterns.
package telemetry
