package usage

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendAndTotals(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC()
	if err := store.Append(now, 1, 100); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(now, 2, 250); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	requests, chars, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if requests != 3 || chars != 350 {
		t.Errorf("Totals() = (%d, %d), want (3, 350)", requests, chars)
	}
}

func TestStore_EmptyTotals(t *testing.T) {
	store := newTestStore(t)

	requests, chars, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if requests != 0 || chars != 0 {
		t.Errorf("Totals() = (%d, %d), want zeros", requests, chars)
	}
}

func TestStore_TotalsSince(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC()
	if err := store.Append(now.Add(-2*time.Hour), 5, 500); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(now, 1, 100); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	requests, chars, err := store.TotalsSince(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("TotalsSince() error = %v", err)
	}
	if requests != 1 || chars != 100 {
		t.Errorf("TotalsSince() = (%d, %d), want (1, 100)", requests, chars)
	}
}

func TestStore_Cleanup(t *testing.T) {
	store := newTestStore(t)

	now := time.Now().UTC()
	store.Append(now.Add(-48*time.Hour), 1, 10)
	store.Append(now.Add(-47*time.Hour), 1, 10)
	store.Append(now, 1, 10)

	deleted, err := store.Cleanup(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Cleanup() = %d, want 2", deleted)
	}

	requests, _, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if requests != 1 {
		t.Errorf("Totals() requests = %d after cleanup, want 1", requests)
	}
}

func TestNewStore_RequiresPath(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Error("NewStore(\"\") error = nil")
	}
}

func TestPersistentTracker(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "usage.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	tracker, err := NewPersistentTracker(Config{}, store)
	if err != nil {
		t.Fatalf("NewPersistentTracker() error = %v", err)
	}

	tracker.Record(1, 100)
	tracker.Record(1, 200)
	if err := tracker.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// A fresh tracker over the same database resumes lifetime totals.
	store, err = NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() reopen error = %v", err)
	}
	tracker, err = NewPersistentTracker(Config{}, store)
	if err != nil {
		t.Fatalf("NewPersistentTracker() reopen error = %v", err)
	}
	defer tracker.Close()

	requests, chars := tracker.Totals()
	if requests != 2 || chars != 300 {
		t.Errorf("Totals() = (%d, %d) after reopen, want (2, 300)", requests, chars)
	}
}
