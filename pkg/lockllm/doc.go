// Package lockllm is a client for the LockLLM security gateway. It scans
// prompts for injection attacks, policy violations, abuse, and PII before
// they reach an upstream model.
//
// The zero-configuration path reads the API key from the LOCKLLM_API_KEY
// environment variable:
//
//	client, err := lockllm.New(lockllm.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.Scan(ctx, "user input here", nil)
//
// Scan failures are typed: errors.As against PromptInjectionError,
// RateLimitError, and the other kinds in this package distinguishes
// security verdicts from transport problems. Retries with exponential
// backoff are built in; a context deadline bounds the whole retried call.
package lockllm
