package proxy

import (
	"fmt"

	"github.com/lockllm/lockllm-go/pkg/lockllm"
)

// SDKConfig carries what a provider SDK needs to route its traffic through
// the gateway: the proxy base URL and the default headers to attach to every
// request.
type SDKConfig struct {
	BaseURL string
	Headers map[string]string
}

// ClientConfig builds the SDK settings for routing a provider's client
// library through the gateway. apiKey is the LockLLM key; providerKey is the
// upstream provider's own key, forwarded untouched in X-Provider-Key. opts,
// when non-nil, are validated and encoded as X-LockLLM-* headers so the
// gateway applies them to every proxied call.
func ClientConfig(provider ProviderName, apiKey, providerKey string, opts *lockllm.ScanOptions) (*SDKConfig, error) {
	return ClientConfigWithBase(DefaultBaseURL, provider, apiKey, providerKey, opts)
}

// ClientConfigWithBase is ClientConfig against a non-default gateway
// endpoint.
func ClientConfigWithBase(baseURL string, provider ProviderName, apiKey, providerKey string, opts *lockllm.ScanOptions) (*SDKConfig, error) {
	url, err := URLWithBase(baseURL, provider)
	if err != nil {
		return nil, err
	}
	headers, err := proxyHeaders(apiKey, opts)
	if err != nil {
		return nil, err
	}
	if providerKey != "" {
		headers["X-Provider-Key"] = providerKey
	}
	return &SDKConfig{BaseURL: url, Headers: headers}, nil
}

// UniversalClientConfig is ClientConfig for the universal proxy, which bills
// gateway credits instead of forwarding a provider key.
func UniversalClientConfig(apiKey string, opts *lockllm.ScanOptions) (*SDKConfig, error) {
	return UniversalClientConfigWithBase(DefaultBaseURL, apiKey, opts)
}

// UniversalClientConfigWithBase is UniversalClientConfig against a
// non-default gateway endpoint.
func UniversalClientConfigWithBase(baseURL, apiKey string, opts *lockllm.ScanOptions) (*SDKConfig, error) {
	headers, err := proxyHeaders(apiKey, opts)
	if err != nil {
		return nil, err
	}
	return &SDKConfig{BaseURL: UniversalURLWithBase(baseURL), Headers: headers}, nil
}

func proxyHeaders(apiKey string, opts *lockllm.ScanOptions) (map[string]string, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key must not be empty")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	headers := opts.Headers()
	headers["Authorization"] = "Bearer " + apiKey
	return headers, nil
}
