package lockllm

import (
	"strconv"
)

// Wire header names for scan configuration. One stable key per concept; the
// same keys ride on direct scan calls and provider-proxy calls.
const (
	HeaderScanMode        = "X-LockLLM-Scan-Mode"
	HeaderScanAction      = "X-LockLLM-Scan-Action"
	HeaderPolicyAction    = "X-LockLLM-Policy-Action"
	HeaderAbuseAction     = "X-LockLLM-Abuse-Action"
	HeaderPIIAction       = "X-LockLLM-PII-Action"
	HeaderSensitivity     = "X-LockLLM-Sensitivity"
	HeaderRouteAction     = "X-LockLLM-Route-Action"
	HeaderCompression     = "X-LockLLM-Compression"
	HeaderCompressionRate = "X-LockLLM-Compression-Rate"
	HeaderChunk           = "X-LockLLM-Chunk"
	HeaderCacheResponse   = "X-LockLLM-Cache-Response"
	HeaderCacheTTL        = "X-LockLLM-Cache-TTL"
)

// Validate checks the options for domain violations. It runs before encoding
// and therefore before any network activity; a failure here never reaches the
// transport.
func (o *ScanOptions) Validate() error {
	if o == nil {
		return nil
	}

	if o.Sensitivity != nil {
		switch *o.Sensitivity {
		case SensitivityLow, SensitivityMedium, SensitivityHigh:
		default:
			return newConfigurationError("invalid sensitivity %q: must be low, medium, or high", *o.Sensitivity)
		}
	}

	if o.ScanMode != nil {
		switch *o.ScanMode {
		case ScanModeNormal, ScanModePolicyOnly, ScanModeCombined:
		default:
			return newConfigurationError("invalid scan_mode %q: must be normal, policy_only, or combined", *o.ScanMode)
		}
	}

	for name, action := range map[string]*ScanAction{
		"scan_action":   o.ScanAction,
		"policy_action": o.PolicyAction,
		"abuse_action":  o.AbuseAction,
	} {
		if action == nil {
			continue
		}
		switch *action {
		case ActionBlock, ActionAllowWithWarning:
		default:
			return newConfigurationError("invalid %s %q: must be block or allow_with_warning", name, *action)
		}
	}

	if o.PIIAction != nil {
		switch *o.PIIAction {
		case PIIActionStrip, PIIActionBlock, PIIActionAllowWithWarning:
		default:
			return newConfigurationError("invalid pii_action %q: must be strip, block, or allow_with_warning", *o.PIIAction)
		}
	}

	if o.Compression != nil {
		switch *o.Compression {
		case CompressionToon, CompressionCompact, CompressionCombined:
		default:
			return newConfigurationError("invalid compression %q: must be toon, compact, or combined", *o.Compression)
		}
	}

	if o.CompressionRate != nil {
		if o.Compression == nil || *o.Compression == CompressionToon {
			return newConfigurationError("compression_rate requires compression to be compact or combined")
		}
		if *o.CompressionRate < MinCompressionRate || *o.CompressionRate > MaxCompressionRate {
			return newConfigurationError("compression_rate %.2f out of range [%.1f, %.1f]",
				*o.CompressionRate, MinCompressionRate, MaxCompressionRate)
		}
	}

	if o.RouteAction != nil {
		switch *o.RouteAction {
		case RouteDisabled, RouteAuto, RouteCustom:
		default:
			return newConfigurationError("invalid route_action %q: must be disabled, auto, or custom", *o.RouteAction)
		}
	}

	if o.CacheTTL != nil {
		if o.CacheResponse == nil || !*o.CacheResponse {
			return newConfigurationError("cache_ttl requires cache_response to be enabled")
		}
		if *o.CacheTTL <= 0 || *o.CacheTTL > MaxCacheTTL {
			return newConfigurationError("cache_ttl %d out of range (0, %d]", *o.CacheTTL, MaxCacheTTL)
		}
	}

	return nil
}

// Headers encodes the options into wire metadata: exactly one entry per set
// field, nothing for unset fields. The server, not the client, supplies
// defaults for omitted entries. Encoding is pure; equal options always yield
// an identical map.
//
// Validate is not called here; the client validates once before encoding.
func (o *ScanOptions) Headers() map[string]string {
	headers := make(map[string]string)
	if o == nil {
		return headers
	}

	if o.Sensitivity != nil {
		headers[HeaderSensitivity] = string(*o.Sensitivity)
	}
	if o.ScanMode != nil {
		headers[HeaderScanMode] = string(*o.ScanMode)
	}
	if o.ScanAction != nil {
		headers[HeaderScanAction] = string(*o.ScanAction)
	}
	if o.PolicyAction != nil {
		headers[HeaderPolicyAction] = string(*o.PolicyAction)
	}
	if o.AbuseAction != nil {
		headers[HeaderAbuseAction] = string(*o.AbuseAction)
	}
	if o.PIIAction != nil {
		headers[HeaderPIIAction] = string(*o.PIIAction)
	}
	if o.Compression != nil {
		headers[HeaderCompression] = string(*o.Compression)
	}
	if o.CompressionRate != nil {
		headers[HeaderCompressionRate] = strconv.FormatFloat(*o.CompressionRate, 'f', -1, 64)
	}
	if o.Chunk != nil {
		headers[HeaderChunk] = strconv.FormatBool(*o.Chunk)
	}
	if o.RouteAction != nil {
		headers[HeaderRouteAction] = string(*o.RouteAction)
	}
	if o.CacheResponse != nil {
		headers[HeaderCacheResponse] = strconv.FormatBool(*o.CacheResponse)
	}
	if o.CacheTTL != nil {
		headers[HeaderCacheTTL] = strconv.Itoa(*o.CacheTTL)
	}

	return headers
}
