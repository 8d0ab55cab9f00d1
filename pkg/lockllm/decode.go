package lockllm

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// parseScanResponse decodes a gateway scan envelope. The decoder is
// forward-compatible: unknown top-level fields are ignored, and a malformed
// optional sub-object is dropped rather than failing the whole response. Only
// the core verdict fields are mandatory.
//
// Confidence and injection scores are kept as pointers so that an absent
// score (policy-only scans never produce one) stays distinguishable from a
// reported score of zero.
func parseScanResponse(body []byte) (*ScanResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("malformed scan response: %w", err)
	}

	resp := &ScanResponse{}

	if raw, ok := fields["safe"]; ok {
		if err := json.Unmarshal(raw, &resp.Safe); err != nil {
			return nil, fmt.Errorf("malformed scan verdict: %w", err)
		}
	} else {
		return nil, fmt.Errorf("scan response missing verdict")
	}

	decodeField(fields, "label", &resp.Label)
	decodeField(fields, "confidence", &resp.Confidence)
	decodeField(fields, "injection", &resp.Injection)
	decodeField(fields, "sensitivity", &resp.Sensitivity)
	decodeField(fields, "request_id", &resp.RequestID)
	decodeField(fields, "usage", &resp.Usage)
	decodeField(fields, "debug", &resp.Debug)
	decodeField(fields, "policy_confidence", &resp.PolicyConfidence)
	decodeField(fields, "policy_warnings", &resp.PolicyWarnings)
	decodeField(fields, "scan_warning", &resp.ScanWarning)
	decodeField(fields, "abuse_warnings", &resp.AbuseWarnings)
	decodeField(fields, "routing", &resp.Routing)
	decodeField(fields, "pii_result", &resp.PIIResult)
	decodeField(fields, "compression", &resp.Compression)

	return resp, nil
}

// decodeField unmarshals one optional envelope field into dst. A missing or
// malformed value leaves dst at its zero value so one bad sub-object cannot
// poison the rest of the response.
func decodeField(fields map[string]json.RawMessage, name string, dst any) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// Unmarshal may allocate or partially fill dst before failing; wipe
		// it so a bad sub-object reads as absent, not as garbage.
		v := reflect.ValueOf(dst).Elem()
		v.Set(reflect.Zero(v.Type()))
	}
}
