package lockllm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Backoff schedule for transient failures. The base delay doubles each
// attempt, jittered by up to 10%, and never exceeds the cap. Rate-limit
// responses bypass this schedule when the server supplies Retry-After.
const (
	backoffBase = 1 * time.Second
	backoffMax  = 30 * time.Second
)

// rawResponse is a terminal 2xx response from the gateway, before envelope
// decoding.
type rawResponse struct {
	status    int
	header    http.Header
	body      []byte
	requestID string
}

// httpClient executes one logical call against the gateway under the retry
// policy. It holds no per-call state: concurrent calls on the same instance
// are independent, and a cancelled call leaves the client reusable.
type httpClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	client     *http.Client
	logger     *slog.Logger

	// onRetry, when set, is invoked once per retry attempt.
	onRetry func()
}

func newHTTPClient(cfg Config, logger *slog.Logger) *httpClient {
	client := cfg.HTTPClient
	if client == nil {
		transport := &http.Transport{
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
			ForceAttemptHTTP2:   true,
		}
		client = &http.Client{Transport: transport}
	}

	return &httpClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		client:     client,
		logger:     logger,
	}
}

// post sends a JSON body to path and returns the terminal response. Attempts
// are strictly sequential. Transient failures (transport errors, 5xx) retry
// with exponential backoff; 429 honors the server's Retry-After verbatim when
// present. Any other 4xx, including every security block, terminates on the
// first attempt: a deterministic verdict is never retried.
//
// The context deadline bounds the whole call including backoff sleeps;
// expiry surfaces as *NetworkError.
func (c *httpClient) post(ctx context.Context, path string, body []byte, headers map[string]string, timeout time.Duration) (*rawResponse, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if c.onRetry != nil {
				c.onRetry()
			}
			delay := retryDelay(attempt, lastErr)
			c.logger.Debug("retrying request",
				"path", path,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"backoff", delay,
			)
			select {
			case <-ctx.Done():
				return nil, newNetworkError("request cancelled during backoff", "", ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, err := c.attempt(ctx, path, body, headers, timeout)
		if err == nil {
			return resp, nil
		}

		if !retryable(err) {
			return nil, err
		}
		lastErr = err

		if ctx.Err() != nil {
			// Overall deadline expired; don't burn attempts against a dead
			// context.
			return nil, newNetworkError("request deadline exceeded", requestIDOf(lastErr), ctx.Err())
		}

		c.logger.Warn("request failed, will retry",
			"path", path,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, lastErr
}

// attempt performs a single HTTP exchange. Non-2xx responses come back as
// classified errors; transport failures come back as *NetworkError.
func (c *httpClient) attempt(ctx context.Context, path string, body []byte, headers map[string]string, timeout time.Duration) (*rawResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, newConfigurationError("failed to create request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newNetworkError("request cancelled", "", ctx.Err())
		}
		return nil, newNetworkError(fmt.Sprintf("network request failed: %v", err), "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(fmt.Sprintf("failed to read response: %v", err), resp.Header.Get("X-Request-Id"), err)
	}

	requestID := resp.Header.Get("X-Request-Id")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &rawResponse{
			status:    resp.StatusCode,
			header:    resp.Header,
			body:      respBody,
			requestID: requestID,
		}, nil
	}

	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
	return nil, classifyError(resp.StatusCode, respBody, requestID, retryAfter)
}

// close releases pooled connections. The client must not be used afterwards.
func (c *httpClient) close() {
	c.client.CloseIdleConnections()
}

// retryable reports whether an error class is transient. Security verdicts,
// authentication failures, and configuration errors are deterministic and
// never retried.
func retryable(err error) bool {
	switch e := err.(type) {
	case *NetworkError:
		return true
	case *RateLimitError:
		return true
	case *UpstreamError:
		return true
	case *APIError:
		return e.Status >= 500
	default:
		return false
	}
}

// retryDelay computes the delay before the given attempt. A rate-limit error
// carrying the server's Retry-After wins over the exponential schedule.
func retryDelay(attempt int, lastErr error) time.Duration {
	if rle, ok := lastErr.(*RateLimitError); ok && rle.RetryAfter > 0 {
		return rle.RetryAfter
	}
	return calculateBackoff(attempt - 1)
}

// calculateBackoff returns the exponential delay for a 0-indexed retry, with
// up to 10% jitter to avoid thundering herds.
func calculateBackoff(attempt int) time.Duration {
	delay := time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt)))
	if delay > backoffMax {
		delay = backoffMax
	}
	jitter := time.Duration(rand.Float64() * 0.1 * float64(delay))
	return delay + jitter
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date format. Returns 0 when absent or unparseable.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func requestIDOf(err error) string {
	switch e := err.(type) {
	case *NetworkError:
		return e.RequestID
	case *RateLimitError:
		return e.RequestID
	case *UpstreamError:
		return e.RequestID
	case *APIError:
		return e.RequestID
	default:
		return ""
	}
}
