package usage

import (
	"sync"
	"testing"
	"time"
)

func TestTracker_RecordAndTotals(t *testing.T) {
	tracker := NewTracker(Config{})
	defer tracker.Close()

	tracker.Record(1, 100)
	tracker.Record(1, 250)
	tracker.Record(1, 50)

	requests, chars := tracker.Totals()
	if requests != 3 || chars != 400 {
		t.Errorf("Totals() = (%d, %d), want (3, 400)", requests, chars)
	}

	requests, chars = tracker.HourlyUsage()
	if requests != 3 || chars != 400 {
		t.Errorf("HourlyUsage() = (%d, %d), want (3, 400)", requests, chars)
	}
}

func TestTracker_CheckNoLimits(t *testing.T) {
	tracker := NewTracker(Config{})
	defer tracker.Close()

	for i := 0; i < 100; i++ {
		tracker.Record(1, 10)
	}

	st := tracker.Check()
	if !st.Allowed {
		t.Errorf("Check() disallowed without limits: %+v", st)
	}
}

func TestTracker_HourlyLimitExceeded(t *testing.T) {
	tracker := NewTracker(Config{HourlyRequests: 3})
	defer tracker.Close()

	for i := 0; i < 4; i++ {
		tracker.Record(1, 10)
	}

	st := tracker.Check()
	if st.Allowed {
		t.Fatal("Check() allowed above the hourly limit")
	}
	if st.Reason != "hourly request limit exceeded" {
		t.Errorf("Reason = %q", st.Reason)
	}
	if st.Limit != 3 || st.Used != 4 {
		t.Errorf("Limit = %d, Used = %d", st.Limit, st.Used)
	}
	if st.Window != time.Hour {
		t.Errorf("Window = %s", st.Window)
	}
	if st.Reset.IsZero() {
		t.Error("Reset is zero")
	}
}

func TestTracker_AtLimitStillAllowed(t *testing.T) {
	tracker := NewTracker(Config{HourlyRequests: 3})
	defer tracker.Close()

	for i := 0; i < 3; i++ {
		tracker.Record(1, 10)
	}

	if st := tracker.Check(); !st.Allowed {
		t.Errorf("Check() disallowed at exactly the limit: %+v", st)
	}
}

func TestTracker_AlertThreshold(t *testing.T) {
	tracker := NewTracker(Config{HourlyRequests: 10, AlertThreshold: 0.8})
	defer tracker.Close()

	for i := 0; i < 8; i++ {
		tracker.Record(1, 10)
	}

	st := tracker.Check()
	if !st.Allowed {
		t.Fatalf("Check() disallowed at threshold: %+v", st)
	}
	if !st.AlertTriggered {
		t.Error("AlertTriggered = false at 80% of the limit")
	}
	if st.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", st.Remaining)
	}
}

func TestTracker_DailyLimit(t *testing.T) {
	tracker := NewTracker(Config{DailyRequests: 2})
	defer tracker.Close()

	for i := 0; i < 3; i++ {
		tracker.Record(1, 10)
	}

	st := tracker.Check()
	if st.Allowed {
		t.Fatal("Check() allowed above the daily limit")
	}
	if st.Reason != "daily request limit exceeded" {
		t.Errorf("Reason = %q", st.Reason)
	}
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker(Config{HourlyRequests: 1})
	defer tracker.Close()

	tracker.Record(1, 100)
	tracker.Record(1, 100)
	if st := tracker.Check(); st.Allowed {
		t.Fatal("expected limit exceeded before reset")
	}

	tracker.Reset()

	if st := tracker.Check(); !st.Allowed {
		t.Errorf("Check() disallowed after Reset(): %+v", st)
	}
	if requests, chars := tracker.Totals(); requests != 0 || chars != 0 {
		t.Errorf("Totals() = (%d, %d) after Reset()", requests, chars)
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewTracker(Config{})
	defer tracker.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tracker.Record(1, 10)
			}
		}()
	}
	wg.Wait()

	requests, chars := tracker.Totals()
	if requests != 500 || chars != 5000 {
		t.Errorf("Totals() = (%d, %d), want (500, 5000)", requests, chars)
	}
}

func TestRollingWindow(t *testing.T) {
	t.Run("sum accumulates", func(t *testing.T) {
		w := newRollingWindow(time.Hour, time.Minute)
		w.add(2, 100)
		w.add(3, 200)
		requests, chars := w.sum()
		if requests != 5 || chars != 300 {
			t.Errorf("sum() = (%d, %d)", requests, chars)
		}
	})

	t.Run("expired buckets pruned", func(t *testing.T) {
		w := newRollingWindow(time.Hour, time.Minute)
		// Plant a bucket well past the window edge.
		w.buckets[0] = bucket{timestamp: time.Now().Add(-2 * time.Hour), requests: 7, chars: 70}
		w.add(1, 10)

		requests, chars := w.sum()
		if requests != 1 || chars != 10 {
			t.Errorf("sum() = (%d, %d), expired bucket not pruned", requests, chars)
		}
	})

	t.Run("oldest timestamp", func(t *testing.T) {
		w := newRollingWindow(time.Hour, time.Minute)
		if !w.oldestTimestamp().IsZero() {
			t.Error("oldestTimestamp() non-zero on empty window")
		}
		w.add(1, 10)
		if w.oldestTimestamp().IsZero() {
			t.Error("oldestTimestamp() zero after add")
		}
	})

	t.Run("evicts oldest when full", func(t *testing.T) {
		w := newRollingWindow(3*time.Minute, time.Minute)
		now := time.Now()
		for i := range w.buckets {
			w.buckets[i] = bucket{timestamp: now.Add(time.Duration(-i) * time.Minute).Truncate(time.Minute), requests: 1}
		}
		w.add(1, 0)

		requests, _ := w.sum()
		if requests > int64(len(w.buckets))+1 {
			t.Errorf("requests = %d after eviction", requests)
		}
	})

	t.Run("reset clears", func(t *testing.T) {
		w := newRollingWindow(time.Hour, time.Minute)
		w.add(5, 500)
		w.reset()
		if requests, chars := w.sum(); requests != 0 || chars != 0 {
			t.Errorf("sum() = (%d, %d) after reset", requests, chars)
		}
	})
}
