// Package usage tracks local scan consumption across rolling time windows,
// with optional SQLite persistence so totals survive restarts. It is an
// advisory client-side view; the gateway remains authoritative for billing.
package usage

import (
	"log/slog"
	"sync"
	"time"
)

// Config contains usage limits per window. Zero values mean no limit.
type Config struct {
	// HourlyRequests caps scans per rolling hour.
	HourlyRequests int64 `yaml:"hourly_requests"`

	// DailyRequests caps scans per rolling day.
	DailyRequests int64 `yaml:"daily_requests"`

	// MonthlyRequests caps scans per rolling 30 days.
	MonthlyRequests int64 `yaml:"monthly_requests"`

	// AlertThreshold triggers Status.AlertTriggered at this fraction of a
	// limit, e.g. 0.8 for 80%.
	AlertThreshold float64 `yaml:"alert_threshold"`
}

// Status reports how current consumption stands against one limit.
type Status struct {
	// Allowed is false when the limit is exceeded.
	Allowed bool

	// Reason explains a disallowed status.
	Reason string

	// Limit, Used, and Remaining are request counts for the window.
	Limit     int64
	Used      int64
	Remaining int64

	// Window is the limit's rolling window duration.
	Window time.Duration

	// Reset estimates when the oldest consumption falls out of the window.
	Reset time.Time

	// AlertTriggered is set when usage crossed the alert threshold.
	AlertTriggered bool
}

// Tracker accumulates scan counts and input volume across hourly, daily, and
// monthly rolling windows. All methods are safe for concurrent use.
type Tracker struct {
	config Config

	hourly  *rollingWindow
	daily   *rollingWindow
	monthly *rollingWindow

	store  *Store
	logger *slog.Logger

	mu            sync.Mutex
	totalRequests int64
	totalChars    int64
}

// NewTracker creates a usage tracker. Windows are only maintained for
// configured limits; the hourly window always exists so Snapshot has
// something to report.
func NewTracker(config Config) *Tracker {
	t := &Tracker{
		config: config,
		hourly: newRollingWindow(time.Hour, time.Minute),
		logger: slog.Default().With("component", "usage.tracker"),
	}
	if config.DailyRequests > 0 {
		t.daily = newRollingWindow(24*time.Hour, time.Hour)
	}
	if config.MonthlyRequests > 0 {
		t.monthly = newRollingWindow(30*24*time.Hour, 24*time.Hour)
	}
	return t
}

// NewPersistentTracker creates a tracker backed by store. Lifetime totals are
// loaded from the store and each Record is appended to it.
func NewPersistentTracker(config Config, store *Store) (*Tracker, error) {
	t := NewTracker(config)
	t.store = store

	requests, chars, err := store.Totals()
	if err != nil {
		return nil, err
	}
	t.totalRequests = requests
	t.totalChars = chars
	return t, nil
}

// Record adds one scan's consumption to all windows and lifetime totals.
func (t *Tracker) Record(requests, chars int) {
	r, c := int64(requests), int64(chars)

	t.hourly.add(r, c)
	if t.daily != nil {
		t.daily.add(r, c)
	}
	if t.monthly != nil {
		t.monthly.add(r, c)
	}

	t.mu.Lock()
	t.totalRequests += r
	t.totalChars += c
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Append(time.Now().UTC(), r, c); err != nil {
			t.logger.Warn("failed to persist usage sample", "error", err)
		}
	}
}

// Check verifies consumption against all configured limits, most restrictive
// window first.
func (t *Tracker) Check() *Status {
	if st := t.checkWindow(t.hourly, t.config.HourlyRequests, time.Hour, "hourly request limit exceeded"); st != nil {
		return st
	}
	if st := t.checkWindow(t.daily, t.config.DailyRequests, 24*time.Hour, "daily request limit exceeded"); st != nil {
		return st
	}
	if st := t.checkWindow(t.monthly, t.config.MonthlyRequests, 30*24*time.Hour, "monthly request limit exceeded"); st != nil {
		return st
	}
	return &Status{Allowed: true}
}

func (t *Tracker) checkWindow(w *rollingWindow, limit int64, window time.Duration, reason string) *Status {
	if limit <= 0 || w == nil {
		return nil
	}

	used, _ := w.sum()
	if used > limit {
		return &Status{
			Allowed: false,
			Reason:  reason,
			Limit:   limit,
			Used:    used,
			Window:  window,
			Reset:   t.resetTime(w),
		}
	}

	if t.config.AlertThreshold > 0 && float64(used) >= t.config.AlertThreshold*float64(limit) {
		return &Status{
			Allowed:        true,
			Limit:          limit,
			Used:           used,
			Remaining:      limit - used,
			Window:         window,
			Reset:          t.resetTime(w),
			AlertTriggered: true,
		}
	}
	return nil
}

func (t *Tracker) resetTime(w *rollingWindow) time.Time {
	oldest := w.oldestTimestamp()
	if oldest.IsZero() {
		return time.Now()
	}
	return oldest.Add(w.window)
}

// HourlyUsage returns the rolling-hour request and character counts.
func (t *Tracker) HourlyUsage() (requests, chars int64) {
	return t.hourly.sum()
}

// Totals returns lifetime request and character counts.
func (t *Tracker) Totals() (requests, chars int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalRequests, t.totalChars
}

// Reset clears all windows and lifetime totals. Persisted samples are not
// touched.
func (t *Tracker) Reset() {
	t.hourly.reset()
	if t.daily != nil {
		t.daily.reset()
	}
	if t.monthly != nil {
		t.monthly.reset()
	}

	t.mu.Lock()
	t.totalRequests = 0
	t.totalChars = 0
	t.mu.Unlock()
}

// Close releases the persistence backend when one is attached.
func (t *Tracker) Close() error {
	if t.store != nil {
		return t.store.Close()
	}
	return nil
}
