package lockllm

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestClassifyError_SecurityKinds(t *testing.T) {
	t.Run("prompt injection with scan result", func(t *testing.T) {
		body := []byte(`{
			"error": {
				"message": "Prompt injection detected",
				"type": "security_error",
				"code": "prompt_injection_detected",
				"scan_result": {"safe": false, "label": 1, "confidence": 12.5, "injection": 87.5, "sensitivity": "high"}
			}
		}`)

		err := classifyError(400, body, "req_1", 0)
		injErr, ok := err.(*PromptInjectionError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *PromptInjectionError", err)
		}
		if injErr.ScanResult.Safe {
			t.Error("ScanResult.Safe = true, want false")
		}
		if injErr.ScanResult.Injection == nil || *injErr.ScanResult.Injection != 87.5 {
			t.Errorf("ScanResult.Injection = %v, want 87.5", injErr.ScanResult.Injection)
		}
		if injErr.RequestID != "req_1" {
			t.Errorf("RequestID = %q, want req_1", injErr.RequestID)
		}
	})

	t.Run("injection code without scan result stays generic", func(t *testing.T) {
		body := []byte(`{"error": {"message": "blocked", "code": "prompt_injection_detected"}}`)

		err := classifyError(400, body, "", 0)
		if _, ok := err.(*PromptInjectionError); ok {
			t.Fatal("classifyError() fabricated a PromptInjectionError without a scan result")
		}
		if _, ok := err.(*APIError); !ok {
			t.Fatalf("classifyError() = %T, want *APIError fallback", err)
		}
	})

	t.Run("policy violation", func(t *testing.T) {
		body := []byte(`{
			"error": {
				"message": "Policy violation detected",
				"code": "policy_violation",
				"violated_policies": [
					{"policy_name": "no-weapons", "violated_categories": [{"name": "Violent Crimes"}]}
				]
			}
		}`)

		err := classifyError(403, body, "", 0)
		polErr, ok := err.(*PolicyViolationError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *PolicyViolationError", err)
		}
		if len(polErr.ViolatedPolicies) != 1 || polErr.ViolatedPolicies[0].PolicyName != "no-weapons" {
			t.Errorf("ViolatedPolicies = %v", polErr.ViolatedPolicies)
		}
	})

	t.Run("injection code on 400 is never a policy violation", func(t *testing.T) {
		body := []byte(`{
			"error": {
				"message": "blocked",
				"code": "prompt_injection_detected",
				"scan_result": {"safe": false, "label": 1, "sensitivity": "medium"}
			}
		}`)

		err := classifyError(400, body, "", 0)
		if _, ok := err.(*PolicyViolationError); ok {
			t.Fatal("classifyError() returned PolicyViolationError for an injection code")
		}
		if _, ok := err.(*PromptInjectionError); !ok {
			t.Fatalf("classifyError() = %T, want *PromptInjectionError", err)
		}
	})

	t.Run("abuse detected", func(t *testing.T) {
		body := []byte(`{
			"error": {
				"message": "Abuse detected",
				"code": "abuse_detected",
				"abuse_details": {"confidence": 91.0, "abuse_types": ["spam"]}
			}
		}`)

		err := classifyError(400, body, "", 0)
		abuseErr, ok := err.(*AbuseDetectedError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *AbuseDetectedError", err)
		}
		if abuseErr.AbuseDetails["confidence"] != 91.0 {
			t.Errorf("AbuseDetails = %v", abuseErr.AbuseDetails)
		}
	})

	t.Run("pii detected", func(t *testing.T) {
		body := []byte(`{
			"error": {
				"message": "PII detected",
				"code": "pii_detected",
				"pii_details": {"entity_types": ["EMAIL", "SSN"], "entity_count": 3}
			}
		}`)

		err := classifyError(403, body, "", 0)
		piiErr, ok := err.(*PIIDetectedError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *PIIDetectedError", err)
		}
		if piiErr.EntityCount != 3 || len(piiErr.EntityTypes) != 2 {
			t.Errorf("EntityTypes = %v, EntityCount = %d", piiErr.EntityTypes, piiErr.EntityCount)
		}
	})
}

func TestClassifyError_BillingAndTransport(t *testing.T) {
	t.Run("insufficient credits aliases", func(t *testing.T) {
		codes := []string{
			"insufficient_credits",
			"no_balance",
			"insufficient_routing_credits",
			"balance_check_failed",
			"credits_unavailable",
		}
		for _, code := range codes {
			body := []byte(`{"error": {"message": "broke", "code": "` + code + `", "current_balance": 0.25}}`)
			err := classifyError(402, body, "", 0)
			credErr, ok := err.(*InsufficientCreditsError)
			if !ok {
				t.Fatalf("code %s: classifyError() = %T, want *InsufficientCreditsError", code, err)
			}
			if credErr.CurrentBalance == nil || *credErr.CurrentBalance != 0.25 {
				t.Errorf("code %s: CurrentBalance = %v, want 0.25", code, credErr.CurrentBalance)
			}
		}
	})

	t.Run("balance without reported fields keeps them nil", func(t *testing.T) {
		body := []byte(`{"error": {"message": "broke", "code": "no_balance"}}`)
		err := classifyError(402, body, "", 0)
		credErr, ok := err.(*InsufficientCreditsError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *InsufficientCreditsError", err)
		}
		if credErr.CurrentBalance != nil || credErr.EstimatedCost != nil {
			t.Error("balance fields fabricated from an empty body")
		}
	})

	t.Run("authentication", func(t *testing.T) {
		body := []byte(`{"error": {"message": "Invalid API key", "type": "authentication_error"}}`)
		err := classifyError(401, body, "", 0)
		if _, ok := err.(*AuthenticationError); !ok {
			t.Fatalf("classifyError() = %T, want *AuthenticationError", err)
		}
	})

	t.Run("rate limit carries retry after", func(t *testing.T) {
		body := []byte(`{"error": {"message": "slow down", "type": "rate_limit_error"}}`)
		err := classifyError(429, body, "", 1500*time.Millisecond)
		rlErr, ok := err.(*RateLimitError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *RateLimitError", err)
		}
		if rlErr.RetryAfter != 1500*time.Millisecond {
			t.Errorf("RetryAfter = %v, want 1.5s", rlErr.RetryAfter)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		body := []byte(`{"error": {"message": "provider down", "type": "upstream_error", "provider": "openai", "upstream_status": 503}}`)
		err := classifyError(502, body, "", 0)
		upErr, ok := err.(*UpstreamError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *UpstreamError", err)
		}
		if upErr.Provider != "openai" || upErr.UpstreamStatus != 503 {
			t.Errorf("Provider = %q, UpstreamStatus = %d", upErr.Provider, upErr.UpstreamStatus)
		}
	})

	t.Run("configuration codes", func(t *testing.T) {
		for _, code := range []string{"no_upstream_key", "no_byok_key", "invalid_provider_for_credits_mode"} {
			body := []byte(`{"error": {"message": "bad setup", "code": "` + code + `"}}`)
			err := classifyError(400, body, "", 0)
			if _, ok := err.(*ConfigurationError); !ok {
				t.Fatalf("code %s: classifyError() = %T, want *ConfigurationError", code, err)
			}
		}
	})
}

func TestClassifyError_FlatAndFallback(t *testing.T) {
	t.Run("flat legacy format", func(t *testing.T) {
		body := []byte(`{"error": "insufficient_credits", "message": "No credits left", "request_id": "req_9"}`)
		err := classifyError(402, body, "", 0)
		credErr, ok := err.(*InsufficientCreditsError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *InsufficientCreditsError", err)
		}
		if credErr.Message != "No credits left" {
			t.Errorf("Message = %q", credErr.Message)
		}
		if credErr.RequestID != "req_9" {
			t.Errorf("RequestID = %q, want req_9", credErr.RequestID)
		}
	})

	t.Run("unparseable body falls back by status", func(t *testing.T) {
		err := classifyError(401, []byte("<html>nope</html>"), "req_h", 0)
		authErr, ok := err.(*AuthenticationError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *AuthenticationError", err)
		}
		if !strings.Contains(authErr.Message, "HTTP 401") {
			t.Errorf("Message = %q, want HTTP status prefix", authErr.Message)
		}
	})

	t.Run("unparseable 429 still resolves rate limit", func(t *testing.T) {
		err := classifyError(429, nil, "", 2*time.Second)
		rlErr, ok := err.(*RateLimitError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *RateLimitError", err)
		}
		if rlErr.RetryAfter != 2*time.Second {
			t.Errorf("RetryAfter = %v", rlErr.RetryAfter)
		}
	})

	t.Run("ambiguous status stays generic", func(t *testing.T) {
		err := classifyError(418, []byte(`{"error": {"message": "teapot", "type": "novelty"}}`), "", 0)
		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *APIError", err)
		}
		if apiErr.Status != 418 {
			t.Errorf("Status = %d, want 418", apiErr.Status)
		}
	})

	t.Run("long opaque bodies are truncated", func(t *testing.T) {
		err := classifyError(503, []byte(strings.Repeat("x", 500)), "", 0)
		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("classifyError() = %T, want *APIError", err)
		}
		if len(apiErr.Message) > 250 {
			t.Errorf("Message length = %d, want truncated", len(apiErr.Message))
		}
	})
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Message: "boom", Code: "err_code", RequestID: "req_x"}
	got := err.Error()
	if got != "boom (code: err_code) [request_id: req_x]" {
		t.Errorf("Error() = %q", got)
	}

	bare := &APIError{Message: "boom"}
	if bare.Error() != "boom" {
		t.Errorf("Error() = %q, want boom", bare.Error())
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "5", 5 * time.Second},
		{"zero seconds", "0", 0},
		{"negative rejected", "-3", 0},
		{"garbage", "soon", 0},
		{"trailing garbage rejected", "5x", 0},
		{"http date in the past", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.header); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}

	t.Run("http date in the future", func(t *testing.T) {
		header := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
		got := parseRetryAfter(header)
		if got <= 0 || got > 10*time.Second {
			t.Errorf("parseRetryAfter(%q) = %v, want (0, 10s]", header, got)
		}
	})
}
