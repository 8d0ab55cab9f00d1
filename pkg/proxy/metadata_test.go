package proxy

import (
	"encoding/base64"
	"net/http"
	"testing"
)

func TestParseMetadata_CoreFields(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Request-Id", "req_42")
	headers.Set("X-LockLLM-Scanned", "true")
	headers.Set("X-LockLLM-Safe", "true")
	headers.Set("X-LockLLM-Label", "0")
	headers.Set("X-Scan-Mode", "combined")
	headers.Set("X-LockLLM-Credits-Mode", "byok")
	headers.Set("X-LockLLM-Provider", "openai")
	headers.Set("X-LockLLM-Model", "gpt-4o-mini")
	headers.Set("X-LockLLM-Sensitivity", "high")

	m := ParseMetadata(headers)

	if m.RequestID != "req_42" {
		t.Errorf("RequestID = %q", m.RequestID)
	}
	if !m.Scanned || !m.Safe || m.Blocked {
		t.Errorf("verdict flags = scanned=%t safe=%t blocked=%t", m.Scanned, m.Safe, m.Blocked)
	}
	if m.Label == nil || *m.Label != 0 {
		t.Errorf("Label = %v, want 0", m.Label)
	}
	if m.ScanMode != "combined" || m.CreditsMode != "byok" {
		t.Errorf("ScanMode = %q, CreditsMode = %q", m.ScanMode, m.CreditsMode)
	}
	if m.Provider != "openai" || m.Model != "gpt-4o-mini" {
		t.Errorf("Provider = %q, Model = %q", m.Provider, m.Model)
	}
	if m.Sensitivity != "high" {
		t.Errorf("Sensitivity = %q", m.Sensitivity)
	}
}

func TestParseMetadata_GroupsIndependentlyAbsent(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-LockLLM-Scanned", "true")
	headers.Set("X-LockLLM-Safe", "true")
	// Only the scan-warning group is flagged on.
	headers.Set("X-LockLLM-Scan-Warning", "true")
	headers.Set("X-LockLLM-Injection-Score", "48.5")
	headers.Set("X-LockLLM-Confidence", "51.5")

	m := ParseMetadata(headers)

	if m.ScanWarning == nil {
		t.Fatal("ScanWarning = nil, want group present")
	}
	if m.ScanWarning.InjectionScore != 48.5 {
		t.Errorf("InjectionScore = %v, want 48.5", m.ScanWarning.InjectionScore)
	}
	if m.PolicyWarnings != nil {
		t.Error("PolicyWarnings present without its flag header")
	}
	if m.AbuseDetected != nil {
		t.Error("AbuseDetected present without its flag header")
	}
	if m.Routing != nil {
		t.Error("Routing present without its flag header")
	}
}

func TestParseMetadata_GroupFlagMustBeTrue(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-LockLLM-Scan-Warning", "false")
	headers.Set("X-LockLLM-Injection-Score", "99.0")

	m := ParseMetadata(headers)
	if m.ScanWarning != nil {
		t.Error("ScanWarning present with flag set to false")
	}
}

func TestParseMetadata_AbuseGroup(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-LockLLM-Abuse-Detected", "true")
	headers.Set("X-LockLLM-Abuse-Confidence", "87.0")
	headers.Set("X-LockLLM-Abuse-Types", "spam, jailbreak_farm , ")

	m := ParseMetadata(headers)

	if m.AbuseDetected == nil {
		t.Fatal("AbuseDetected = nil")
	}
	if m.AbuseDetected.Confidence != 87.0 {
		t.Errorf("Confidence = %v", m.AbuseDetected.Confidence)
	}
	want := []string{"spam", "jailbreak_farm"}
	if len(m.AbuseDetected.Types) != len(want) {
		t.Fatalf("Types = %v, want %v", m.AbuseDetected.Types, want)
	}
	for i := range want {
		if m.AbuseDetected.Types[i] != want[i] {
			t.Errorf("Types[%d] = %q, want %q", i, m.AbuseDetected.Types[i], want[i])
		}
	}
}

func TestParseMetadata_PIIGroup(t *testing.T) {
	t.Run("detected", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-LockLLM-PII-Detected", "true")
		headers.Set("X-LockLLM-PII-Types", "email,phone,ssn")
		headers.Set("X-LockLLM-PII-Count", "5")
		headers.Set("X-LockLLM-PII-Action", "strip")

		m := ParseMetadata(headers)
		if m.PIIDetected == nil {
			t.Fatal("PIIDetected = nil")
		}
		if !m.PIIDetected.Detected {
			t.Error("Detected = false")
		}
		if len(m.PIIDetected.EntityTypes) != 3 || m.PIIDetected.EntityTypes[0] != "email" {
			t.Errorf("EntityTypes = %v", m.PIIDetected.EntityTypes)
		}
		if m.PIIDetected.EntityCount != 5 || m.PIIDetected.Action != "strip" {
			t.Errorf("count = %d, action = %q", m.PIIDetected.EntityCount, m.PIIDetected.Action)
		}
	})

	t.Run("all-clear still reported", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-LockLLM-PII-Detected", "false")

		m := ParseMetadata(headers)
		if m.PIIDetected == nil {
			t.Fatal("PIIDetected = nil for an explicit all-clear")
		}
		if m.PIIDetected.Detected {
			t.Error("Detected = true")
		}
		if m.PIIDetected.EntityCount != 0 || len(m.PIIDetected.EntityTypes) != 0 {
			t.Errorf("group = %+v, want zeros", m.PIIDetected)
		}
	})

	t.Run("absent when detection did not run", func(t *testing.T) {
		m := ParseMetadata(http.Header{})
		if m.PIIDetected != nil {
			t.Errorf("PIIDetected = %+v, want nil", m.PIIDetected)
		}
	})
}

func TestParseMetadata_CompressionGroup(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-LockLLM-Compression", "compact")
	headers.Set("X-LockLLM-Original-Chars", "2000")
	headers.Set("X-LockLLM-Compressed-Chars", "900")
	headers.Set("X-LockLLM-Compression-Ratio", "0.45")

	m := ParseMetadata(headers)
	if m.Compression == nil {
		t.Fatal("Compression = nil")
	}
	if m.Compression.Method != "compact" {
		t.Errorf("Method = %q", m.Compression.Method)
	}
	if m.Compression.OriginalChars != 2000 || m.Compression.CompressedChars != 900 {
		t.Errorf("chars = %d -> %d", m.Compression.OriginalChars, m.Compression.CompressedChars)
	}
	if m.Compression.Ratio != 0.45 {
		t.Errorf("Ratio = %v", m.Compression.Ratio)
	}

	if got := ParseMetadata(http.Header{}); got.Compression != nil {
		t.Errorf("Compression = %+v without headers, want nil", got.Compression)
	}
}

func TestParseMetadata_RoutingGroup(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-LockLLM-Route-Enabled", "true")
	headers.Set("X-LockLLM-Task-Type", "Code Generation")
	headers.Set("X-LockLLM-Complexity", "0.72")
	headers.Set("X-LockLLM-Selected-Model", "deepseek-chat")
	headers.Set("X-LockLLM-Routing-Reason", "cheaper model sufficient")
	headers.Set("X-LockLLM-Original-Provider", "openai")
	headers.Set("X-LockLLM-Original-Model", "gpt-4o")
	headers.Set("X-LockLLM-Estimated-Savings", "0.0125")

	m := ParseMetadata(headers)

	if m.Routing == nil {
		t.Fatal("Routing = nil")
	}
	if m.Routing.TaskType != TaskCodeGeneration {
		t.Errorf("TaskType = %q", m.Routing.TaskType)
	}
	if m.Routing.SelectedModel != "deepseek-chat" || m.Routing.OriginalModel != "gpt-4o" {
		t.Errorf("models = %q <- %q", m.Routing.SelectedModel, m.Routing.OriginalModel)
	}
	if m.Routing.EstimatedSavings != 0.0125 {
		t.Errorf("EstimatedSavings = %v", m.Routing.EstimatedSavings)
	}
}

func TestParseMetadata_CacheStatus(t *testing.T) {
	t.Run("absent means caching not enabled", func(t *testing.T) {
		m := ParseMetadata(http.Header{})
		if m.CacheStatus != nil {
			t.Errorf("CacheStatus = %v, want nil", *m.CacheStatus)
		}
	})

	t.Run("miss is distinct from absent", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-LockLLM-Cache-Status", "MISS")
		m := ParseMetadata(headers)
		if m.CacheStatus == nil || *m.CacheStatus != CacheMiss {
			t.Errorf("CacheStatus = %v, want MISS", m.CacheStatus)
		}
	})

	t.Run("hit with accounting", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-LockLLM-Cache-Status", "hit")
		headers.Set("X-LockLLM-Cache-Age", "120")
		headers.Set("X-LockLLM-Tokens-Saved", "450")
		headers.Set("X-LockLLM-Cost-Saved", "0.003")

		m := ParseMetadata(headers)
		if m.CacheStatus == nil || *m.CacheStatus != CacheHit {
			t.Fatalf("CacheStatus = %v, want HIT", m.CacheStatus)
		}
		if m.CacheAge == nil || *m.CacheAge != 120 {
			t.Errorf("CacheAge = %v", m.CacheAge)
		}
		if m.TokensSaved == nil || *m.TokensSaved != 450 {
			t.Errorf("TokensSaved = %v", m.TokensSaved)
		}
		if m.CostSaved == nil || *m.CostSaved != 0.003 {
			t.Errorf("CostSaved = %v", m.CostSaved)
		}
	})

	t.Run("unknown status treated as absent", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-LockLLM-Cache-Status", "STALE")
		m := ParseMetadata(headers)
		if m.CacheStatus != nil {
			t.Errorf("CacheStatus = %v, want nil for unknown value", *m.CacheStatus)
		}
	})
}

func TestParseMetadata_CreditAccounting(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-LockLLM-Credits-Reserved", "1.5")
	headers.Set("X-LockLLM-Credits-Deducted", "1.2")
	headers.Set("X-LockLLM-Balance-After", "98.8")

	m := ParseMetadata(headers)

	if m.CreditsReserved == nil || *m.CreditsReserved != 1.5 {
		t.Errorf("CreditsReserved = %v", m.CreditsReserved)
	}
	if m.CreditsDeducted == nil || *m.CreditsDeducted != 1.2 {
		t.Errorf("CreditsDeducted = %v", m.CreditsDeducted)
	}
	if m.BalanceAfter == nil || *m.BalanceAfter != 98.8 {
		t.Errorf("BalanceAfter = %v", m.BalanceAfter)
	}
	// Unreported values stay nil, never zero.
	if m.RoutingFeeReserved != nil {
		t.Errorf("RoutingFeeReserved = %v, want nil", m.RoutingFeeReserved)
	}
	if m.EstimatedInputTokens != nil {
		t.Errorf("EstimatedInputTokens = %v, want nil", m.EstimatedInputTokens)
	}
}

func TestParseMetadata_MalformedNumbersStayNil(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-LockLLM-Label", "not-a-number")
	headers.Set("X-LockLLM-Credits-Deducted", "lots")

	m := ParseMetadata(headers)
	if m.Label != nil {
		t.Errorf("Label = %v, want nil for malformed value", m.Label)
	}
	if m.CreditsDeducted != nil {
		t.Errorf("CreditsDeducted = %v, want nil for malformed value", m.CreditsDeducted)
	}
}

func TestDecodeDetail(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte(`{"score": 48.5, "patterns": ["override"]}`))
		out := DecodeDetail(payload)
		if out == nil {
			t.Fatal("DecodeDetail() = nil, want map")
		}
		if out["score"] != 48.5 {
			t.Errorf("score = %v", out["score"])
		}
	})

	t.Run("empty", func(t *testing.T) {
		if out := DecodeDetail(""); out != nil {
			t.Errorf("DecodeDetail(\"\") = %v, want nil", out)
		}
	})

	t.Run("bad base64", func(t *testing.T) {
		if out := DecodeDetail("!!!not-base64!!!"); out != nil {
			t.Errorf("DecodeDetail() = %v, want nil", out)
		}
	})

	t.Run("base64 of non-json", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("plain text"))
		if out := DecodeDetail(payload); out != nil {
			t.Errorf("DecodeDetail() = %v, want nil", out)
		}
	})
}

func TestScanWarning_DecodedDegradesPerField(t *testing.T) {
	w := &ScanWarning{
		InjectionScore: 48.5,
		Detail:         "corrupted-base64",
	}

	// A bad detail never invalidates the scalar fields.
	if w.Decoded() != nil {
		t.Error("Decoded() != nil for corrupted detail")
	}
	if w.InjectionScore != 48.5 {
		t.Error("scalar field lost")
	}
}
