// Package gatewaytest provides a mock LockLLM gateway for tests. It serves
// canned scan verdicts and error responses and records every request it
// receives, including headers, so tests can assert on the exact wire
// behavior of the client.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Server is a mock gateway backed by httptest.
type Server struct {
	server    *httptest.Server
	responses map[string]Response
	requests  []RecordedRequest
	mu        sync.Mutex
}

// Response defines a canned response for one endpoint.
type Response struct {
	StatusCode int
	Body       interface{}
	Headers    map[string]string
	Delay      time.Duration

	// Sequence, when set, overrides the single response: request N gets
	// Sequence[N], with the last entry repeating.
	Sequence []Response
}

// RecordedRequest captures one request the mock received.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewServer starts a mock gateway. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		responses: make(map[string]Response),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the mock gateway's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetResponse sets the canned response for a path.
func (s *Server) SetResponse(path string, response Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = response
}

// Requests returns a copy of all recorded requests.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns the number of requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request, or nil if none arrived.
func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	req := s.requests[len(s.requests)-1]
	return &req
}

// Reset clears recorded requests and canned responses.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.responses = make(map[string]Response)
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	index := len(s.requests) - 1
	response, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if len(response.Sequence) > 0 {
		if index >= len(response.Sequence) {
			index = len(response.Sequence) - 1
		}
		response = response.Sequence[index]
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// SafeScan builds a 200 response for a clean input.
func SafeScan(confidence float64) Response {
	return Response{
		StatusCode: http.StatusOK,
		Body: map[string]interface{}{
			"safe":        true,
			"label":       0,
			"confidence":  confidence,
			"injection":   100.0 - confidence,
			"sensitivity": "medium",
			"request_id":  "req_mock_safe",
			"usage": map[string]interface{}{
				"requests":    1,
				"input_chars": 42,
			},
		},
	}
}

// FlaggedScan builds a 200 response where the scan flagged the input but
// the configured action allowed it through with a warning.
func FlaggedScan(injection float64) Response {
	return Response{
		StatusCode: http.StatusOK,
		Body: map[string]interface{}{
			"safe":        false,
			"label":       1,
			"confidence":  100.0 - injection,
			"injection":   injection,
			"sensitivity": "medium",
			"request_id":  "req_mock_flagged",
			"scan_warning": map[string]interface{}{
				"injection_score": injection,
				"message":         "possible prompt injection",
			},
		},
	}
}

// InjectionBlocked builds the 400 response the gateway sends when a prompt
// injection is detected and the scan action is block.
func InjectionBlocked(injection float64) Response {
	return Response{
		StatusCode: http.StatusBadRequest,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Prompt injection detected",
				"type":    "security_error",
				"code":    "prompt_injection_detected",
				"scan_result": map[string]interface{}{
					"safe":        false,
					"label":       1,
					"confidence":  100.0 - injection,
					"injection":   injection,
					"sensitivity": "high",
				},
			},
			"request_id": "req_mock_blocked",
		},
	}
}

// PolicyBlocked builds a 400 policy violation response.
func PolicyBlocked(policyName string, categories ...string) Response {
	return Response{
		StatusCode: http.StatusBadRequest,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Policy violation detected",
				"type":    "security_error",
				"code":    "policy_violation",
				"violated_policies": []map[string]interface{}{
					{
						"policy_name":         policyName,
						"violated_categories": categories,
					},
				},
			},
			"request_id": "req_mock_policy",
		},
	}
}

// AuthError builds a 401 response.
func AuthError() Response {
	return Response{
		StatusCode: http.StatusUnauthorized,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Invalid API key",
				"type":    "authentication_error",
				"code":    "invalid_api_key",
			},
		},
	}
}

// RateLimited builds a 429 response with a Retry-After header in seconds.
func RateLimited(retryAfterSeconds int) Response {
	return Response{
		StatusCode: http.StatusTooManyRequests,
		Headers: map[string]string{
			"Retry-After": fmt.Sprintf("%d", retryAfterSeconds),
		},
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Rate limit exceeded",
				"type":    "rate_limit_error",
				"code":    "rate_limit_exceeded",
			},
		},
	}
}

// InsufficientCredits builds a 402 response.
func InsufficientCredits(balance float64) Response {
	return Response{
		StatusCode: http.StatusPaymentRequired,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message":         "Insufficient credits",
				"type":            "lockllm_balance_error",
				"code":            "insufficient_credits",
				"current_balance": balance,
			},
		},
	}
}

// ServerError builds a 500 response.
func ServerError() Response {
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Internal server error",
				"type":    "api_error",
			},
		},
	}
}

// UpstreamFailure builds a 502 response attributed to a provider.
func UpstreamFailure(provider string, upstreamStatus int) Response {
	return Response{
		StatusCode: http.StatusBadGateway,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"message":         "Upstream provider request failed",
				"type":            "upstream_error",
				"code":            "upstream_error",
				"provider":        provider,
				"upstream_status": upstreamStatus,
			},
		},
	}
}
