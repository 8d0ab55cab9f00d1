package audit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func seedRecords(t *testing.T, store Storage, times ...time.Time) {
	t.Helper()
	ctx := context.Background()
	for i, at := range times {
		rec := &Record{
			ID:      fmt.Sprintf("rec_%d", i),
			Time:    at,
			Mode:    "fast",
			Outcome: "safe",
		}
		if err := store.Store(ctx, rec); err != nil {
			t.Fatalf("Store() #%d error = %v", i, err)
		}
	}
}

func TestPruner_PruneByAge(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	now := time.Now().UTC()
	seedRecords(t, store,
		now.AddDate(0, 0, -100),
		now.AddDate(0, 0, -95),
		now.AddDate(0, 0, -10),
		now,
	)

	pruner := NewPruner(store, &RetentionConfig{RetentionDays: 90})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() = %d, want 2", deleted)
	}

	count, _ := store.Count(context.Background(), &Query{})
	if count != 2 {
		t.Errorf("Count() = %d after pruning, want 2", count)
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	now := time.Now().UTC()
	times := make([]time.Time, 10)
	for i := range times {
		times[i] = now.Add(time.Duration(-i) * time.Hour)
	}
	seedRecords(t, store, times...)

	pruner := NewPruner(store, &RetentionConfig{MaxRecords: 4})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 6 {
		t.Errorf("Prune() = %d, want 6", deleted)
	}

	// The newest records survive.
	results, _ := store.Query(context.Background(), &Query{})
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
	for _, r := range results {
		if r.Time.Before(now.Add(-4 * time.Hour)) {
			t.Errorf("old record survived count pruning: %s", r.Time)
		}
	}
}

func TestPruner_ZeroConfigKeepsEverything(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	now := time.Now().UTC()
	seedRecords(t, store, now.AddDate(-1, 0, 0), now)

	pruner := NewPruner(store, &RetentionConfig{})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() = %d with no limits, want 0", deleted)
	}
}

func TestPruner_StartRejectsBadSchedule(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{PruneSchedule: "whenever"})
	if err := pruner.Start(context.Background()); err == nil {
		t.Error("Start() error = nil for invalid schedule")
	}
}

func TestPruner_StartAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	})
	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	next := pruner.NextRun()
	if next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}

	pruner.Stop()
}

func TestPruner_NoScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{})
	if err := pruner.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v without a schedule", err)
	}
}
