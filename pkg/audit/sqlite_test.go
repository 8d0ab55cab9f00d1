package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "audit.db")
	store, err := NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	now := time.Now().UTC().Truncate(time.Second)
	rec := &Record{
		ID:          "rec_1",
		RequestID:   "req_abc",
		Time:        now,
		Mode:        "combined",
		Sensitivity: "high",
		Outcome:     "flagged",
		Safe:        false,
		InputChars:  1024,
		DurationMS:  345,
	}
	if err := store.Store(ctx, rec); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	results, err := store.Query(ctx, &Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	got := results[0]
	if got.ID != rec.ID || got.RequestID != rec.RequestID {
		t.Errorf("identity = (%q, %q)", got.ID, got.RequestID)
	}
	if !got.Time.Equal(now) {
		t.Errorf("Time = %s, want %s", got.Time, now)
	}
	if got.Mode != "combined" || got.Sensitivity != "high" || got.Outcome != "flagged" {
		t.Errorf("record = %+v", got)
	}
	if got.Safe {
		t.Error("Safe = true, want false")
	}
	if got.InputChars != 1024 || got.DurationMS != 345 {
		t.Errorf("InputChars = %d, DurationMS = %d", got.InputChars, got.DurationMS)
	}
}

func TestSQLiteStorage_QueryFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	now := time.Now().UTC().Truncate(time.Second)
	seedRecords(t, store, now.Add(-2*time.Hour), now.Add(-time.Hour), now)

	results, err := store.Query(ctx, &Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if !results[0].Time.After(results[2].Time) {
		t.Error("results not sorted newest first")
	}

	start := now.Add(-90 * time.Minute)
	filtered, err := store.Query(ctx, &Query{StartTime: &start, Outcome: "safe", Limit: 1})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("len(filtered) = %d, want 1", len(filtered))
	}
	if !filtered[0].Time.Equal(now) {
		t.Errorf("limit did not keep the newest record: %s", filtered[0].Time)
	}
}

func TestSQLiteStorage_CountAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	now := time.Now().UTC().Truncate(time.Second)
	seedRecords(t, store, now.Add(-time.Hour), now)

	count, err := store.Count(ctx, &Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	cutoff := now.Add(-30 * time.Minute)
	deleted, err := store.Delete(ctx, &Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Delete() = %d, want 1", deleted)
	}

	count, _ = store.Count(ctx, &Query{})
	if count != 1 {
		t.Errorf("Count() = %d after delete, want 1", count)
	}
}

func TestSQLiteStorage_WorksWithPruner(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLite(t)

	now := time.Now().UTC().Truncate(time.Second)
	seedRecords(t, store, now.AddDate(0, 0, -120), now)

	pruner := NewPruner(store, &RetentionConfig{RetentionDays: 90})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() = %d, want 1", deleted)
	}
}
