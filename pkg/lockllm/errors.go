package lockllm

import (
	"encoding/json"
	"fmt"
	"time"
)

// APIError is the common shape of every failure returned by the gateway. It
// is returned directly when the response does not match any of the specific
// kinds below; the client never guesses a specific kind from an ambiguous
// payload.
type APIError struct {
	// Message is the human-readable error description.
	Message string

	// Type is the error type identifier from the gateway.
	Type string

	// Code is the specific error code from the gateway.
	Code string

	// Status is the HTTP status code (0 for local failures).
	Status int

	// RequestID correlates the failure with server-side logs.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	s := e.Message
	if e.Code != "" {
		s += fmt.Sprintf(" (code: %s)", e.Code)
	}
	if e.RequestID != "" {
		s += fmt.Sprintf(" [request_id: %s]", e.RequestID)
	}
	return s
}

// AuthenticationError is returned when the gateway rejects the API key (401).
type AuthenticationError struct {
	APIError
}

// RateLimitError is returned when the rate limit is exceeded (429).
type RateLimitError struct {
	APIError

	// RetryAfter is the exact wait the server asked for before retrying.
	// Zero when the server did not supply one.
	RetryAfter time.Duration
}

// PromptInjectionError is returned when the scan action is "block" and a
// malicious prompt is detected (400).
type PromptInjectionError struct {
	APIError

	// ScanResult carries the verdict and threat scores for the blocked input.
	ScanResult ScanResult
}

// PolicyViolationError is returned when the policy action is "block" and a
// custom policy violation is found (403).
type PolicyViolationError struct {
	APIError

	// ViolatedPolicies lists the violated policies in the order the gateway
	// reported them.
	ViolatedPolicies []PolicyViolation
}

// AbuseDetectedError is returned when the abuse action is "block" and abuse
// patterns are detected (400).
type AbuseDetectedError struct {
	APIError

	// AbuseDetails carries the gateway's structured abuse findings.
	AbuseDetails map[string]any
}

// PIIDetectedError is returned when the PII action is "block" and PII
// entities are found (403).
type PIIDetectedError struct {
	APIError

	// EntityTypes lists the distinct PII entity types detected.
	EntityTypes []string

	// EntityCount is the number of entities found.
	EntityCount int
}

// InsufficientCreditsError is returned when the credit balance is too low to
// process the request (402).
type InsufficientCreditsError struct {
	APIError

	// CurrentBalance is the remaining credit balance, when reported.
	CurrentBalance *float64

	// EstimatedCost is the estimated cost of the request, when reported.
	EstimatedCost *float64
}

// UpstreamError is returned when the proxied provider fails (502).
type UpstreamError struct {
	APIError

	// Provider is the upstream provider name, when reported.
	Provider string

	// UpstreamStatus is the provider's HTTP status, when reported.
	UpstreamStatus int
}

// ConfigurationError is returned for invalid client or request configuration,
// always before any network activity when the problem is local.
type ConfigurationError struct {
	APIError
}

// NetworkError is returned when the request fails at the transport layer:
// timeout, connection refused, DNS failure, or an exhausted retry budget.
type NetworkError struct {
	APIError

	// Cause is the underlying transport error.
	Cause error
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{APIError: APIError{
		Message: fmt.Sprintf(format, args...),
		Type:    "configuration_error",
		Code:    "invalid_config",
		Status:  400,
	}}
}

func newNetworkError(message, requestID string, cause error) *NetworkError {
	return &NetworkError{
		APIError: APIError{
			Message:   message,
			Type:      "network_error",
			Code:      "connection_failed",
			RequestID: requestID,
		},
		Cause: cause,
	}
}

// errorEnvelope is the wire shape of gateway error bodies. The error field is
// either a structured object or, in the flat legacy format, a bare code
// string accompanied by a top-level message.
type errorEnvelope struct {
	Error     json.RawMessage `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
}

// errorDetail is the structured error object inside the envelope.
type errorDetail struct {
	Message          string            `json:"message"`
	Type             string            `json:"type"`
	Code             string            `json:"code"`
	RequestID        string            `json:"request_id"`
	ScanResult       *ScanResult       `json:"scan_result"`
	ViolatedPolicies []PolicyViolation `json:"violated_policies"`
	AbuseDetails     map[string]any    `json:"abuse_details"`
	PIIDetails       *piiDetails       `json:"pii_details"`
	CurrentBalance   *float64          `json:"current_balance"`
	EstimatedCost    *float64          `json:"estimated_cost"`
	Provider         string            `json:"provider"`
	UpstreamStatus   int               `json:"upstream_status"`
}

type piiDetails struct {
	EntityTypes []string `json:"entity_types"`
	EntityCount int      `json:"entity_count"`
}

// insufficientCreditCodes are the code aliases the gateway uses for balance
// failures across billing paths.
var insufficientCreditCodes = map[string]bool{
	"insufficient_credits":         true,
	"no_balance":                   true,
	"insufficient_routing_credits": true,
	"balance_check_failed":         true,
	"credits_unavailable":          true,
}

// configurationCodes are gateway-side codes that signal a client
// misconfiguration rather than a scan outcome.
var configurationCodes = map[string]bool{
	"no_upstream_key":                   true,
	"no_byok_key":                       true,
	"invalid_provider_for_credits_mode": true,
}

// classifyError maps a non-2xx response to exactly one failure kind. The
// selection is status-code-first, refined by the body's error code and shape.
// An ambiguous body falls back to a generic *APIError carrying the raw status
// and message; kind-specific fields are never fabricated.
func classifyError(status int, body []byte, requestID string, retryAfter time.Duration) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return genericError(status, body, requestID, retryAfter)
	}

	// Flat legacy format: {"error": "some_code", "message": "..."}.
	var flatCode string
	if err := json.Unmarshal(env.Error, &flatCode); err == nil {
		message := env.Message
		if message == "" {
			message = flatCode
		}
		if env.RequestID != "" {
			requestID = env.RequestID
		}
		return buildError(status, errorDetail{
			Message: message,
			Type:    flatCode,
			Code:    flatCode,
		}, requestID, retryAfter)
	}

	var detail errorDetail
	if err := json.Unmarshal(env.Error, &detail); err != nil {
		return genericError(status, body, requestID, retryAfter)
	}
	if detail.RequestID != "" {
		requestID = detail.RequestID
	} else if env.RequestID != "" {
		requestID = env.RequestID
	}
	if detail.Message == "" {
		detail.Message = "An error occurred"
	}
	return buildError(status, detail, requestID, retryAfter)
}

// buildError applies the classification table to a decoded error detail.
func buildError(status int, detail errorDetail, requestID string, retryAfter time.Duration) error {
	base := APIError{
		Message:   detail.Message,
		Type:      detail.Type,
		Code:      detail.Code,
		Status:    status,
		RequestID: requestID,
	}

	switch {
	case detail.Code == "prompt_injection_detected" && detail.ScanResult != nil:
		base.Type = "lockllm_security_error"
		return &PromptInjectionError{APIError: base, ScanResult: *detail.ScanResult}

	case detail.Code == "policy_violation":
		base.Type = "lockllm_policy_error"
		return &PolicyViolationError{APIError: base, ViolatedPolicies: detail.ViolatedPolicies}

	case detail.Code == "abuse_detected":
		base.Type = "lockllm_abuse_error"
		return &AbuseDetectedError{APIError: base, AbuseDetails: detail.AbuseDetails}

	case detail.Code == "pii_detected":
		base.Type = "lockllm_pii_error"
		e := &PIIDetectedError{APIError: base}
		if detail.PIIDetails != nil {
			e.EntityTypes = detail.PIIDetails.EntityTypes
			e.EntityCount = detail.PIIDetails.EntityCount
		}
		return e

	case insufficientCreditCodes[detail.Code] || detail.Type == "lockllm_balance_error":
		base.Type = "lockllm_balance_error"
		return &InsufficientCreditsError{
			APIError:       base,
			CurrentBalance: detail.CurrentBalance,
			EstimatedCost:  detail.EstimatedCost,
		}

	case detail.Type == "authentication_error" || detail.Code == "unauthorized" || status == 401:
		base.Type = "authentication_error"
		base.Code = "unauthorized"
		base.Status = 401
		return &AuthenticationError{APIError: base}

	case detail.Type == "rate_limit_error" || detail.Code == "rate_limited" || status == 429:
		base.Type = "rate_limit_error"
		base.Code = "rate_limited"
		base.Status = 429
		return &RateLimitError{APIError: base, RetryAfter: retryAfter}

	case detail.Type == "upstream_error" || detail.Code == "provider_error":
		base.Type = "upstream_error"
		base.Code = "provider_error"
		return &UpstreamError{
			APIError:       base,
			Provider:       detail.Provider,
			UpstreamStatus: detail.UpstreamStatus,
		}

	case detail.Type == "configuration_error" || detail.Type == "lockllm_config_error" || configurationCodes[detail.Code]:
		base.Type = "configuration_error"
		return &ConfigurationError{APIError: base}
	}

	return &base
}

// genericError handles responses whose body is missing or unparseable. The
// status alone still resolves the unambiguous rows of the table.
func genericError(status int, body []byte, requestID string, retryAfter time.Duration) error {
	message := fmt.Sprintf("HTTP %d", status)
	if len(body) > 0 {
		message = fmt.Sprintf("HTTP %d: %s", status, truncate(string(body), 200))
	}

	base := APIError{
		Message:   message,
		Type:      "unknown_error",
		Status:    status,
		RequestID: requestID,
	}

	switch status {
	case 401:
		base.Type = "authentication_error"
		base.Code = "unauthorized"
		return &AuthenticationError{APIError: base}
	case 429:
		base.Type = "rate_limit_error"
		base.Code = "rate_limited"
		return &RateLimitError{APIError: base, RetryAfter: retryAfter}
	}
	return &base
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
