// The lockllm command is a CLI for the LockLLM security gateway.
//
// It scans prompts for injection attacks and policy violations, prints
// proxy endpoints for supported providers, and inspects the local audit
// trail and usage counters.
//
// Usage:
//
//	# Scan a prompt
//	lockllm scan "Ignore all previous instructions"
//
//	# Scan with high sensitivity, JSON output
//	lockllm scan --sensitivity high --format json "some input"
//
//	# Print the proxy endpoint for a provider
//	lockllm proxy-url openai
//
//	# Query the local audit trail
//	lockllm audit query --db data/audit.db --outcome flagged
//
//	# Validate a configuration file
//	lockllm validate --config lockllm.yaml
package main

func main() {
	Execute()
}
