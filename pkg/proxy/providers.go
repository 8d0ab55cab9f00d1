// Package proxy supports routing provider SDK traffic through the gateway:
// it resolves per-provider proxy endpoints and parses the X-LockLLM-*
// response headers the gateway attaches to pass-through calls. The provider's
// own response body is never read or altered here.
package proxy

import (
	"fmt"
	"strings"
)

// ProviderName identifies an upstream LLM provider routed through the
// gateway.
type ProviderName string

// Supported providers.
const (
	ProviderOpenAI      ProviderName = "openai"
	ProviderAnthropic   ProviderName = "anthropic"
	ProviderGemini      ProviderName = "gemini"
	ProviderCohere      ProviderName = "cohere"
	ProviderOpenRouter  ProviderName = "openrouter"
	ProviderPerplexity  ProviderName = "perplexity"
	ProviderMistral     ProviderName = "mistral"
	ProviderGroq        ProviderName = "groq"
	ProviderDeepSeek    ProviderName = "deepseek"
	ProviderTogether    ProviderName = "together"
	ProviderXAI         ProviderName = "xai"
	ProviderFireworks   ProviderName = "fireworks"
	ProviderAnyscale    ProviderName = "anyscale"
	ProviderHuggingFace ProviderName = "huggingface"
	ProviderAzure       ProviderName = "azure"
	ProviderBedrock     ProviderName = "bedrock"
	ProviderVertexAI    ProviderName = "vertex-ai"
)

// DefaultBaseURL is the production gateway endpoint.
const DefaultBaseURL = "https://api.lockllm.com"

var providers = []ProviderName{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGemini,
	ProviderCohere,
	ProviderOpenRouter,
	ProviderPerplexity,
	ProviderMistral,
	ProviderGroq,
	ProviderDeepSeek,
	ProviderTogether,
	ProviderXAI,
	ProviderFireworks,
	ProviderAnyscale,
	ProviderHuggingFace,
	ProviderAzure,
	ProviderBedrock,
	ProviderVertexAI,
}

// Providers returns all supported provider names.
func Providers() []ProviderName {
	out := make([]ProviderName, len(providers))
	copy(out, providers)
	return out
}

// IsSupported reports whether provider is a known provider name.
func IsSupported(provider ProviderName) bool {
	for _, p := range providers {
		if p == provider {
			return true
		}
	}
	return false
}

// URL returns the gateway proxy endpoint for a provider. Point the provider
// SDK's base URL at it and the gateway scans every request before forwarding.
func URL(provider ProviderName) (string, error) {
	return URLWithBase(DefaultBaseURL, provider)
}

// URLWithBase is URL against a non-default gateway endpoint.
func URLWithBase(baseURL string, provider ProviderName) (string, error) {
	if !IsSupported(provider) {
		return "", fmt.Errorf("unsupported provider %q", provider)
	}
	return strings.TrimRight(baseURL, "/") + "/v1/proxy/" + string(provider), nil
}

// UniversalURL returns the universal proxy endpoint. It uses gateway credits
// instead of BYOK provider keys and serves all providers' models.
func UniversalURL() string {
	return UniversalURLWithBase(DefaultBaseURL)
}

// UniversalURLWithBase is UniversalURL against a non-default gateway
// endpoint.
func UniversalURLWithBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/v1/proxy"
}

// AllURLs returns proxy endpoints for every supported provider.
func AllURLs() map[ProviderName]string {
	urls := make(map[ProviderName]string, len(providers))
	for _, p := range providers {
		url, _ := URL(p)
		urls[p] = url
	}
	return urls
}

// TaskType classifies a request for intelligent routing.
type TaskType string

// Task types reported in routing metadata.
const (
	TaskOpenQA         TaskType = "Open QA"
	TaskClosedQA       TaskType = "Closed QA"
	TaskSummarization  TaskType = "Summarization"
	TaskTextGeneration TaskType = "Text Generation"
	TaskCodeGeneration TaskType = "Code Generation"
	TaskChatbot        TaskType = "Chatbot"
	TaskClassification TaskType = "Classification"
	TaskRewrite        TaskType = "Rewrite"
	TaskBrainstorming  TaskType = "Brainstorming"
	TaskExtraction     TaskType = "Extraction"
	TaskOther          TaskType = "Other"
)
