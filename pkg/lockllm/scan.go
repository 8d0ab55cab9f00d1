package lockllm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lockllm/lockllm-go/pkg/audit"
)

const scanPath = "/v1/scan"

// scanRequest is the wire body for a scan call. Everything else travels in
// headers.
type scanRequest struct {
	Input       string `json:"input"`
	Sensitivity string `json:"sensitivity"`
}

// Scan submits input for security analysis and returns the gateway's verdict.
// Options are layered over the client's defaults field-by-field and validated
// before any network traffic. A blocked input surfaces as a typed error
// (*PromptInjectionError, *PolicyViolationError, and so on), never as a
// response.
func (c *Client) Scan(ctx context.Context, input string, opts *ScanOptions) (*ScanResponse, error) {
	return c.ScanWithOptions(ctx, input, opts, nil)
}

// ScanWithOptions is Scan with per-request transport overrides: extra headers
// and a one-off attempt timeout.
func (c *Client) ScanWithOptions(ctx context.Context, input string, opts *ScanOptions, reqOpts *RequestOptions) (*ScanResponse, error) {
	merged := opts.Merge(c.defaultOpts)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	sensitivity := string(SensitivityMedium)
	if merged != nil && merged.Sensitivity != nil {
		sensitivity = string(*merged.Sensitivity)
	}

	input = c.compress(ctx, merged, input)

	body, err := json.Marshal(scanRequest{Input: input, Sensitivity: sensitivity})
	if err != nil {
		return nil, newConfigurationError("failed to encode request: %v", err)
	}

	headers := merged.Headers()
	var timeout time.Duration
	if reqOpts != nil {
		for key, value := range reqOpts.Headers {
			headers[key] = value
		}
		timeout = reqOpts.Timeout
	}

	start := time.Now()
	raw, err := c.http.post(ctx, scanPath, body, headers, timeout)
	duration := time.Since(start)

	mode := string(ScanModeNormal)
	if merged != nil && merged.ScanMode != nil {
		mode = string(*merged.ScanMode)
	}

	if err != nil {
		c.observe(mode, sensitivity, duration, len(input), nil, err)
		return nil, err
	}

	resp, err := parseScanResponse(raw.body)
	if err != nil {
		nerr := newNetworkError(err.Error(), raw.requestID, err)
		c.observe(mode, sensitivity, duration, len(input), nil, nerr)
		return nil, nerr
	}

	// Every scan carries a request ID for correlation, even when the gateway
	// omits one.
	if resp.RequestID == "" {
		resp.RequestID = raw.requestID
	}
	if resp.RequestID == "" {
		resp.RequestID = "local-" + uuid.NewString()
	}

	c.logger.Debug("scan completed",
		"request_id", resp.RequestID,
		"safe", resp.Safe,
		"mode", mode,
		"duration", duration,
	)
	c.observe(mode, sensitivity, duration, len(input), resp, nil)
	return resp, nil
}

// observe fans a completed scan out to the optional metrics, audit, and
// usage components.
func (c *Client) observe(mode, sensitivity string, duration time.Duration, inputChars int, resp *ScanResponse, err error) {
	if c.metrics != nil {
		if err != nil {
			c.metrics.RecordError(errorKind(err))
		} else {
			c.metrics.RecordScan(mode, resp.Safe, duration)
		}
	}

	if c.audit != nil {
		rec := audit.Record{
			Time:        time.Now().UTC(),
			Mode:        mode,
			Sensitivity: sensitivity,
			InputChars:  inputChars,
			DurationMS:  duration.Milliseconds(),
		}
		if err != nil {
			rec.Outcome = errorKind(err)
			rec.RequestID = requestIDOf(err)
		} else {
			rec.RequestID = resp.RequestID
			rec.Safe = resp.Safe
			if resp.Safe {
				rec.Outcome = "safe"
			} else {
				rec.Outcome = "flagged"
			}
		}
		c.audit.Record(rec)
	}

	if c.usage != nil && resp != nil {
		requests := resp.Usage.Requests
		if requests == 0 {
			requests = 1
		}
		chars := resp.Usage.InputChars
		if chars == 0 {
			chars = inputChars
		}
		c.usage.Record(requests, chars)
	}
}

// errorKind labels an error class for metrics and audit records.
func errorKind(err error) string {
	switch err.(type) {
	case *PromptInjectionError:
		return "prompt_injection"
	case *PolicyViolationError:
		return "policy_violation"
	case *AbuseDetectedError:
		return "abuse_detected"
	case *PIIDetectedError:
		return "pii_detected"
	case *AuthenticationError:
		return "authentication"
	case *RateLimitError:
		return "rate_limit"
	case *InsufficientCreditsError:
		return "insufficient_credits"
	case *UpstreamError:
		return "upstream"
	case *ConfigurationError:
		return "configuration"
	case *NetworkError:
		return "network"
	default:
		return "api_error"
	}
}
