package lockllm

import "time"

// Sensitivity is the detection threshold tier requested for a scan.
type Sensitivity string

const (
	// SensitivityLow produces fewer false positives but may miss
	// sophisticated attacks.
	SensitivityLow Sensitivity = "low"

	// SensitivityMedium is the balanced default.
	SensitivityMedium Sensitivity = "medium"

	// SensitivityHigh maximizes protection at the cost of more false positives.
	SensitivityHigh Sensitivity = "high"
)

// ScanMode selects which security checks the gateway performs.
type ScanMode string

const (
	// ScanModeNormal runs core injection detection only.
	ScanModeNormal ScanMode = "normal"

	// ScanModePolicyOnly runs custom policies only and skips the core scan.
	ScanModePolicyOnly ScanMode = "policy_only"

	// ScanModeCombined runs both the core scan and custom policies.
	ScanModeCombined ScanMode = "combined"
)

// ScanAction controls gateway behavior when a detection fires.
type ScanAction string

const (
	// ActionBlock rejects the request with a typed security error.
	ActionBlock ScanAction = "block"

	// ActionAllowWithWarning lets the request through and attaches a
	// warning sub-result to the response.
	ActionAllowWithWarning ScanAction = "allow_with_warning"
)

// PIIAction controls gateway behavior when PII entities are found.
type PIIAction string

const (
	// PIIActionStrip removes detected entities from the prompt.
	PIIActionStrip PIIAction = "strip"

	// PIIActionBlock rejects the request.
	PIIActionBlock PIIAction = "block"

	// PIIActionAllowWithWarning attaches PII details to the response.
	PIIActionAllowWithWarning PIIAction = "allow_with_warning"
)

// CompressionMethod selects the prompt compression algorithm.
type CompressionMethod string

const (
	// CompressionToon applies JSON-to-compact notation (JSON inputs only).
	CompressionToon CompressionMethod = "toon"

	// CompressionCompact applies ML-based compression to any text.
	CompressionCompact CompressionMethod = "compact"

	// CompressionCombined applies toon followed by ML-based compression.
	CompressionCombined CompressionMethod = "combined"
)

// RouteAction selects the intelligent routing mode for proxy calls.
type RouteAction string

const (
	// RouteDisabled forces the originally requested model.
	RouteDisabled RouteAction = "disabled"

	// RouteAuto enables AI-powered automatic model selection.
	RouteAuto RouteAction = "auto"

	// RouteCustom applies user-defined routing rules.
	RouteCustom RouteAction = "custom"
)

// Compression rate bounds accepted by the gateway for the compact and
// combined methods.
const (
	MinCompressionRate = 0.3
	MaxCompressionRate = 0.7
)

// MaxCacheTTL is the longest response cache lifetime the gateway accepts,
// in seconds.
const MaxCacheTTL = 86400

// ScanOptions configures a single scan or proxy call. Every field is
// individually optional: a nil field is omitted from the wire request and the
// server applies its own default. The client never substitutes defaults of
// its own.
type ScanOptions struct {
	// Sensitivity is the detection threshold tier. Nil means the server
	// default (medium).
	Sensitivity *Sensitivity

	// ScanMode selects which checks run.
	ScanMode *ScanMode

	// ScanAction is the behavior when core injection detection fires.
	ScanAction *ScanAction

	// PolicyAction is the behavior when a custom policy violation is found.
	PolicyAction *ScanAction

	// AbuseAction enables abuse detection and sets its behavior. Nil leaves
	// abuse detection disabled.
	AbuseAction *ScanAction

	// PIIAction enables PII detection and sets its behavior. Nil leaves PII
	// detection disabled.
	PIIAction *PIIAction

	// Compression enables prompt compression. Nil leaves compression
	// disabled.
	Compression *CompressionMethod

	// CompressionRate tunes the compact and combined methods. Valid range is
	// [0.3, 0.7]; lower is more aggressive. Setting it with any other method
	// (or none) is a configuration error.
	CompressionRate *float64

	// Chunk toggles chunking for long prompts.
	Chunk *bool

	// RouteAction selects the routing mode for proxy calls.
	RouteAction *RouteAction

	// CacheResponse toggles gateway-side response caching for proxy calls.
	CacheResponse *bool

	// CacheTTL is the cache lifetime in seconds, capped at 86400. Setting it
	// without CacheResponse=true is a configuration error.
	CacheTTL *int
}

// Merge returns a copy of o with unset fields filled in from base. Fields set
// on o always win; neither input is modified.
func (o *ScanOptions) Merge(base *ScanOptions) *ScanOptions {
	if o == nil {
		if base == nil {
			return nil
		}
		merged := *base
		return &merged
	}
	merged := *o
	if base == nil {
		return &merged
	}
	if merged.Sensitivity == nil {
		merged.Sensitivity = base.Sensitivity
	}
	if merged.ScanMode == nil {
		merged.ScanMode = base.ScanMode
	}
	if merged.ScanAction == nil {
		merged.ScanAction = base.ScanAction
	}
	if merged.PolicyAction == nil {
		merged.PolicyAction = base.PolicyAction
	}
	if merged.AbuseAction == nil {
		merged.AbuseAction = base.AbuseAction
	}
	if merged.PIIAction == nil {
		merged.PIIAction = base.PIIAction
	}
	if merged.Compression == nil {
		merged.Compression = base.Compression
	}
	if merged.CompressionRate == nil {
		merged.CompressionRate = base.CompressionRate
	}
	if merged.Chunk == nil {
		merged.Chunk = base.Chunk
	}
	if merged.RouteAction == nil {
		merged.RouteAction = base.RouteAction
	}
	if merged.CacheResponse == nil {
		merged.CacheResponse = base.CacheResponse
	}
	if merged.CacheTTL == nil {
		merged.CacheTTL = base.CacheTTL
	}
	return &merged
}

// RequestOptions carries per-call overrides that are not part of the scan
// configuration itself.
type RequestOptions struct {
	// Headers are extra HTTP headers merged over the generated ones.
	Headers map[string]string

	// Timeout overrides the client's per-attempt timeout for this call.
	Timeout time.Duration
}

// Usage reports resource consumption for a scan.
type Usage struct {
	// Requests is the number of upstream inference requests used.
	Requests int `json:"requests"`

	// InputChars is the number of characters in the scanned input.
	InputChars int `json:"input_chars"`
}

// Debug carries processing timings, present only on plans that return them.
type Debug struct {
	// DurationMS is the total processing time in milliseconds.
	DurationMS int `json:"duration_ms"`

	// InferenceMS is the ML inference time in milliseconds.
	InferenceMS int `json:"inference_ms"`

	// Mode is the processing mode used ("single" or "chunked").
	Mode string `json:"mode"`
}

// ViolatedCategory is one category violated within a custom policy.
type ViolatedCategory struct {
	// Name is the category name (e.g., "Violent Crimes").
	Name string `json:"name"`

	// Description details the category, when the policy defines one.
	Description string `json:"description,omitempty"`
}

// PolicyViolation describes a custom policy violated during scanning.
type PolicyViolation struct {
	// PolicyName is the name of the violated policy.
	PolicyName string `json:"policy_name"`

	// ViolatedCategories lists the specific categories triggered, in the
	// order the gateway reported them.
	ViolatedCategories []ViolatedCategory `json:"violated_categories"`

	// ViolationDetails is the specific text that triggered the violation.
	ViolationDetails string `json:"violation_details,omitempty"`
}

// ScanWarning is attached when core injection detection fires in
// allow_with_warning mode.
type ScanWarning struct {
	Message        string  `json:"message"`
	InjectionScore float64 `json:"injection_score"`
	Confidence     float64 `json:"confidence"`
	Label          int     `json:"label"`
}

// AbuseWarning is attached when abuse detection fires in allow_with_warning
// mode.
type AbuseWarning struct {
	Detected       bool               `json:"detected"`
	Confidence     float64            `json:"confidence"`
	AbuseTypes     []string           `json:"abuse_types"`
	Indicators     map[string]float64 `json:"indicators"`
	Recommendation string             `json:"recommendation,omitempty"`
}

// RoutingInfo reports the intelligent routing decision when routing ran.
type RoutingInfo struct {
	Enabled       bool     `json:"enabled"`
	TaskType      string   `json:"task_type"`
	Complexity    float64  `json:"complexity"`
	SelectedModel string   `json:"selected_model,omitempty"`
	Reasoning     string   `json:"reasoning,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
}

// PIIResult reports PII detection findings when PII detection ran.
type PIIResult struct {
	Detected    bool     `json:"detected"`
	EntityTypes []string `json:"entity_types"`
	EntityCount int      `json:"entity_count"`

	// RedactedInput is the input with entities stripped, returned when the
	// PII action is "strip".
	RedactedInput string `json:"redacted_input,omitempty"`
}

// CompressionResult reports the outcome of prompt compression when it ran.
type CompressionResult struct {
	Method          CompressionMethod `json:"method"`
	OriginalChars   int               `json:"original_chars"`
	CompressedChars int               `json:"compressed_chars"`
	Ratio           float64           `json:"ratio"`
}

// ScanResult is the core verdict of a scan.
//
// Confidence and Injection are nil when the corresponding check did not run
// (policy_only mode). Callers must distinguish "not scanned" from "scanned,
// scored zero".
type ScanResult struct {
	// Safe reports whether the input was classified as safe.
	Safe bool `json:"safe"`

	// Label is the binary classification: 0 safe, 1 malicious.
	Label int `json:"label"`

	// Confidence is the detection confidence (0-100).
	Confidence *float64 `json:"confidence,omitempty"`

	// Injection is the injection risk score (0-100).
	Injection *float64 `json:"injection,omitempty"`

	// Sensitivity is the threshold tier the scan ran with.
	Sensitivity Sensitivity `json:"sensitivity"`
}

// ScanResponse is the complete decoded result of a scan call. Sub-results are
// nil unless the corresponding feature was requested and produced output.
type ScanResponse struct {
	ScanResult

	// RequestID identifies the request for diagnostics. Always set; the
	// gateway's value is preferred, with a client-generated fallback.
	RequestID string `json:"request_id"`

	// Usage reports resource consumption.
	Usage Usage `json:"usage"`

	// Debug carries processing timings when the plan returns them.
	Debug *Debug `json:"debug,omitempty"`

	// PolicyConfidence is the policy check confidence (0-100), present in
	// policy_only and combined modes.
	PolicyConfidence *float64 `json:"policy_confidence,omitempty"`

	// PolicyWarnings lists custom policy violations in allow_with_warning
	// mode.
	PolicyWarnings []PolicyViolation `json:"policy_warnings,omitempty"`

	// ScanWarning carries core injection details in allow_with_warning mode.
	ScanWarning *ScanWarning `json:"scan_warning,omitempty"`

	// AbuseWarnings carries abuse detection results when enabled.
	AbuseWarnings *AbuseWarning `json:"abuse_warnings,omitempty"`

	// Routing carries the routing decision when routing was enabled.
	Routing *RoutingInfo `json:"routing,omitempty"`

	// PIIResult carries PII findings when PII detection was enabled.
	PIIResult *PIIResult `json:"pii_result,omitempty"`

	// Compression reports compression results when compression ran.
	Compression *CompressionResult `json:"compression,omitempty"`
}

// Ptr returns a pointer to v. It keeps option literals short:
//
//	opts := &lockllm.ScanOptions{ScanMode: lockllm.Ptr(lockllm.ScanModeCombined)}
func Ptr[T any](v T) *T {
	return &v
}
