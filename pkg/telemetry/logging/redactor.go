package logging

import (
	"fmt"
	"regexp"
)

// Redactor scrubs secrets from log field values before they reach a handler.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in redaction pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternAuthHeader  = "authorization"
)

// NewRedactor creates a Redactor with the built-in secret patterns plus any
// custom patterns. Custom patterns that fail to compile are skipped.
func NewRedactor(customPatterns []RedactPattern) *Redactor {
	r := &Redactor{}

	// Gateway API keys use an sk_ prefix; sk- covers upstream provider keys
	// that may appear in error messages.
	r.add(PatternAPIKey, `\b(sk[-_][a-zA-Z0-9_]{8,})\b`, "sk_***")
	r.add(PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***")
	r.add(PatternAuthHeader, `(?i)(authorization:\s*)\S+`, "${1}***")

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

func (r *Redactor) add(name, pattern, replacement string) {
	r.patterns = append(r.patterns, &redactPattern{
		name:        name,
		regex:       regexp.MustCompile(pattern),
		replacement: replacement,
	})
}

// Redact applies all patterns to a single string.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactArgs applies redaction to the value positions of slog key/value
// pairs. Non-string values that stringify to something containing a secret
// (errors, stringers) are redacted into strings; other values pass through.
func (r *Redactor) RedactArgs(args ...any) []any {
	redacted := make([]any, len(args))
	for i, arg := range args {
		// Even positions are keys, leave them alone.
		if i%2 == 0 {
			redacted[i] = arg
			continue
		}
		switch v := arg.(type) {
		case string:
			redacted[i] = r.Redact(v)
		case error:
			if v == nil {
				redacted[i] = arg
				continue
			}
			msg := v.Error()
			if cleaned := r.Redact(msg); cleaned != msg {
				redacted[i] = cleaned
			} else {
				redacted[i] = arg
			}
		case fmt.Stringer:
			msg := v.String()
			if cleaned := r.Redact(msg); cleaned != msg {
				redacted[i] = cleaned
			} else {
				redacted[i] = arg
			}
		default:
			redacted[i] = arg
		}
	}
	return redacted
}
