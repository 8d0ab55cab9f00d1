package logging

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	scanModeKey  contextKey = "scan_mode"
)

// WithRequestID returns a context carrying a gateway request ID for log
// correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom extracts the request ID from ctx, or "" when absent.
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithScanMode returns a context carrying the active scan mode.
func WithScanMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, scanModeKey, mode)
}

// ScanModeFrom extracts the scan mode from ctx, or "" when absent.
func ScanModeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(scanModeKey).(string); ok {
		return v
	}
	return ""
}

// extractContextFields collects the known context fields as slog key/value
// pairs.
func extractContextFields(ctx context.Context) []any {
	var fields []any
	if id := RequestIDFrom(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	if mode := ScanModeFrom(ctx); mode != "" {
		fields = append(fields, "scan_mode", mode)
	}
	return fields
}
