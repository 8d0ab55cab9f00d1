// Package audit provides a local audit trail for gateway scan activity.
// Records are written asynchronously so that scan calls never block on
// storage, and a retention pruner keeps the trail bounded.
package audit

import (
	"context"
	"fmt"
	"time"
)

// Record is one completed scan call: its verdict, timing, and enough request
// metadata to reconstruct what was asked without storing the input itself.
type Record struct {
	// ID is assigned by the recorder (UUID v4).
	ID string `json:"id"`

	// RequestID correlates with gateway logs. Empty when the call failed
	// before a request ID was issued.
	RequestID string `json:"request_id"`

	// Time is when the call completed.
	Time time.Time `json:"time"`

	// Mode is the scan mode the call ran under.
	Mode string `json:"mode"`

	// Sensitivity is the detection sensitivity the call ran under.
	Sensitivity string `json:"sensitivity"`

	// Outcome is "safe", "flagged", or an error class such as
	// "prompt_injection" or "rate_limit".
	Outcome string `json:"outcome"`

	// Safe is the gateway verdict. Only meaningful when the call succeeded.
	Safe bool `json:"safe"`

	// InputChars is the length of the scanned input. The input itself is
	// never recorded.
	InputChars int `json:"input_chars"`

	// DurationMS is the total call duration including retries.
	DurationMS int64 `json:"duration_ms"`
}

// Query defines filter parameters for reading back audit records.
type Query struct {
	// StartTime and EndTime bound the record Time, inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Outcome filters by outcome label.
	Outcome string `json:"outcome,omitempty"`

	// Mode filters by scan mode.
	Mode string `json:"mode,omitempty"`

	// Limit caps the number of records returned; 0 means no cap.
	Limit int `json:"limit,omitempty"`
}

// Storage is a backend for audit records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how many were
	// removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases backend resources.
	Close() error
}

// StorageError wraps a backend failure with the backend name and operation.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// matches reports whether a record satisfies the query filters, ignoring
// Limit.
func (q *Query) matches(r *Record) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && r.Time.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.Time.After(*q.EndTime) {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.Mode != "" && r.Mode != q.Mode {
		return false
	}
	return true
}
