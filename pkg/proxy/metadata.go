package proxy

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// CacheStatus is the gateway's response-cache verdict.
type CacheStatus string

const (
	// CacheHit means the response was served from the gateway cache.
	CacheHit CacheStatus = "HIT"
	// CacheMiss means caching was enabled but no cached response matched.
	CacheMiss CacheStatus = "MISS"
)

// ScanWarning is attached when scanning flagged the request but the
// configured action allowed it through.
type ScanWarning struct {
	InjectionScore float64
	Confidence     float64

	// Detail is the raw base64-encoded JSON detail. Use Decoded to parse it.
	Detail string
}

// Decoded returns the parsed detail payload, or nil when absent or
// malformed.
func (w *ScanWarning) Decoded() map[string]any {
	return DecodeDetail(w.Detail)
}

// PolicyWarnings summarizes custom-policy findings that were allowed through
// with a warning.
type PolicyWarnings struct {
	Count      int
	Confidence float64
	Detail     string
}

// Decoded returns the parsed detail payload, or nil when absent or
// malformed.
func (w *PolicyWarnings) Decoded() map[string]any {
	return DecodeDetail(w.Detail)
}

// AbuseDetected summarizes abuse findings that were allowed through with a
// warning.
type AbuseDetected struct {
	Confidence float64
	Types      []string
	Detail     string
}

// Decoded returns the parsed detail payload, or nil when absent or
// malformed.
func (a *AbuseDetected) Decoded() map[string]any {
	return DecodeDetail(a.Detail)
}

// PIIDetected summarizes PII findings on a proxied call. The group is
// present whenever PII detection ran, even when nothing was found.
type PIIDetected struct {
	Detected bool

	// EntityTypes lists the detected entity kinds, e.g. "email", "ssn".
	EntityTypes []string

	EntityCount int

	// Action is the PII action the gateway applied (strip, block,
	// allow_with_warning).
	Action string
}

// Compression summarizes the gateway's input compression for a proxied call.
type Compression struct {
	Method          string
	OriginalChars   int
	CompressedChars int
	Ratio           float64
}

// Routing describes the gateway's model-routing decision.
type Routing struct {
	TaskType         TaskType
	Complexity       float64
	SelectedModel    string
	RoutingReason    string
	OriginalProvider string
	OriginalModel    string
	EstimatedSavings float64
}

// ResponseMetadata is everything the gateway reports about a proxied call
// through its response headers. Each optional group is nil when the
// corresponding feature was not enabled or did not trigger. The provider's
// response body is untouched.
type ResponseMetadata struct {
	// RequestID correlates with gateway logs.
	RequestID string

	// Scanned reports whether the gateway scanned the request.
	Scanned bool

	// Safe is the scan verdict.
	Safe bool

	// Blocked reports whether the gateway refused to forward the request.
	Blocked bool

	// Label is the numeric verdict (0 safe, 1 flagged), nil when absent.
	Label *int

	// ScanMode is the mode the scan ran under.
	ScanMode string

	// CreditsMode is "byok" or "credits".
	CreditsMode string

	// Provider and Model identify the upstream that served the call.
	Provider string
	Model    string

	// Sensitivity is the detection sensitivity the scan ran under.
	Sensitivity string

	// PolicyConfidence is the policy scan confidence, nil when policy
	// scanning did not run.
	PolicyConfidence *float64

	// Optional feature groups.
	ScanWarning    *ScanWarning
	PolicyWarnings *PolicyWarnings
	AbuseDetected  *AbuseDetected
	PIIDetected    *PIIDetected
	Routing        *Routing
	Compression    *Compression

	// Credit accounting, each nil when not reported.
	CreditsReserved    *float64
	RoutingFeeReserved *float64
	RoutingFeeReason   string
	CreditsDeducted    *float64
	BalanceAfter       *float64

	// Routing cost estimates, each nil when not reported.
	EstimatedOriginalCost *float64
	EstimatedRoutedCost   *float64
	EstimatedInputTokens  *int
	EstimatedOutputTokens *int

	// CacheStatus is nil when caching was not enabled for the call, which is
	// distinct from a MISS.
	CacheStatus *CacheStatus

	// Cache accounting, each nil when not reported.
	CacheAge    *int
	TokensSaved *int
	CostSaved   *float64
}

// ParseMetadata extracts gateway metadata from proxied response headers. It
// is a pure function over the headers: missing optional groups stay nil, and
// no value is defaulted on the client side.
func ParseMetadata(headers http.Header) *ResponseMetadata {
	m := &ResponseMetadata{
		RequestID:   headers.Get("X-Request-Id"),
		Scanned:     headers.Get("X-LockLLM-Scanned") == "true",
		Safe:        headers.Get("X-LockLLM-Safe") == "true",
		Blocked:     headers.Get("X-LockLLM-Blocked") == "true",
		ScanMode:    headers.Get("X-Scan-Mode"),
		CreditsMode: headers.Get("X-LockLLM-Credits-Mode"),
		Provider:    headers.Get("X-LockLLM-Provider"),
		Model:       headers.Get("X-LockLLM-Model"),
		Sensitivity: headers.Get("X-LockLLM-Sensitivity"),
	}

	m.Label = intHeader(headers, "X-LockLLM-Label")
	m.PolicyConfidence = floatHeader(headers, "X-LockLLM-Policy-Confidence")

	if headers.Get("X-LockLLM-Scan-Warning") == "true" {
		m.ScanWarning = &ScanWarning{
			InjectionScore: floatHeaderOr(headers, "X-LockLLM-Injection-Score", 0),
			Confidence:     floatHeaderOr(headers, "X-LockLLM-Confidence", 0),
			Detail:         headers.Get("X-LockLLM-Scan-Detail"),
		}
	}

	if headers.Get("X-LockLLM-Policy-Warnings") == "true" {
		m.PolicyWarnings = &PolicyWarnings{
			Count:      intHeaderOr(headers, "X-LockLLM-Warning-Count", 0),
			Confidence: floatHeaderOr(headers, "X-LockLLM-Policy-Confidence", 0),
			Detail:     headers.Get("X-LockLLM-Warning-Detail"),
		}
	}

	if headers.Get("X-LockLLM-Abuse-Detected") == "true" {
		m.AbuseDetected = &AbuseDetected{
			Confidence: floatHeaderOr(headers, "X-LockLLM-Abuse-Confidence", 0),
			Types:      splitTypes(headers.Get("X-LockLLM-Abuse-Types")),
			Detail:     headers.Get("X-LockLLM-Abuse-Detail"),
		}
	}

	// PII detection reports even an all-clear: the group exists whenever the
	// flag header is present at all.
	if detected := headers.Get("X-LockLLM-PII-Detected"); detected != "" {
		m.PIIDetected = &PIIDetected{
			Detected:    detected == "true",
			EntityTypes: splitTypes(headers.Get("X-LockLLM-PII-Types")),
			EntityCount: intHeaderOr(headers, "X-LockLLM-PII-Count", 0),
			Action:      headers.Get("X-LockLLM-PII-Action"),
		}
	}

	if method := headers.Get("X-LockLLM-Compression"); method != "" {
		m.Compression = &Compression{
			Method:          method,
			OriginalChars:   intHeaderOr(headers, "X-LockLLM-Original-Chars", 0),
			CompressedChars: intHeaderOr(headers, "X-LockLLM-Compressed-Chars", 0),
			Ratio:           floatHeaderOr(headers, "X-LockLLM-Compression-Ratio", 0),
		}
	}

	if headers.Get("X-LockLLM-Route-Enabled") == "true" {
		m.Routing = &Routing{
			TaskType:         TaskType(headers.Get("X-LockLLM-Task-Type")),
			Complexity:       floatHeaderOr(headers, "X-LockLLM-Complexity", 0),
			SelectedModel:    headers.Get("X-LockLLM-Selected-Model"),
			RoutingReason:    headers.Get("X-LockLLM-Routing-Reason"),
			OriginalProvider: headers.Get("X-LockLLM-Original-Provider"),
			OriginalModel:    headers.Get("X-LockLLM-Original-Model"),
			EstimatedSavings: floatHeaderOr(headers, "X-LockLLM-Estimated-Savings", 0),
		}
	}

	m.CreditsReserved = floatHeader(headers, "X-LockLLM-Credits-Reserved")
	m.RoutingFeeReserved = floatHeader(headers, "X-LockLLM-Routing-Fee-Reserved")
	m.RoutingFeeReason = headers.Get("X-LockLLM-Routing-Fee-Reason")
	m.CreditsDeducted = floatHeader(headers, "X-LockLLM-Credits-Deducted")
	m.BalanceAfter = floatHeader(headers, "X-LockLLM-Balance-After")

	m.EstimatedOriginalCost = floatHeader(headers, "X-LockLLM-Estimated-Original-Cost")
	m.EstimatedRoutedCost = floatHeader(headers, "X-LockLLM-Estimated-Routed-Cost")
	m.EstimatedInputTokens = intHeader(headers, "X-LockLLM-Estimated-Input-Tokens")
	m.EstimatedOutputTokens = intHeader(headers, "X-LockLLM-Estimated-Output-Tokens")

	switch strings.ToUpper(headers.Get("X-LockLLM-Cache-Status")) {
	case string(CacheHit):
		status := CacheHit
		m.CacheStatus = &status
	case string(CacheMiss):
		status := CacheMiss
		m.CacheStatus = &status
	}

	m.CacheAge = intHeader(headers, "X-LockLLM-Cache-Age")
	m.TokensSaved = intHeader(headers, "X-LockLLM-Tokens-Saved")
	m.CostSaved = floatHeader(headers, "X-LockLLM-Cost-Saved")

	return m
}

// DecodeDetail decodes a base64-encoded JSON detail header value. Returns
// nil when the value is empty or malformed; a bad detail never invalidates
// the rest of the metadata.
func DecodeDetail(detail string) map[string]any {
	if detail == "" {
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(detail)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(decoded, &out); err != nil {
		return nil
	}
	return out
}

func floatHeader(headers http.Header, name string) *float64 {
	v := headers.Get(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func floatHeaderOr(headers http.Header, name string, fallback float64) float64 {
	if f := floatHeader(headers, name); f != nil {
		return *f
	}
	return fallback
}

func intHeader(headers http.Header, name string) *int {
	v := headers.Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func intHeaderOr(headers http.Header, name string, fallback int) int {
	if n := intHeader(headers, name); n != nil {
		return *n
	}
	return fallback
}

func splitTypes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
