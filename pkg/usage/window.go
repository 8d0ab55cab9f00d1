package usage

import (
	"sync"
	"time"
)

// rollingWindow accumulates request and character counts over a rolling time
// window, divided into fixed-size buckets. Buckets outside the window are
// pruned lazily on access.
type rollingWindow struct {
	window     time.Duration
	bucketSize time.Duration
	buckets    []bucket
	mu         sync.Mutex
}

type bucket struct {
	timestamp time.Time
	requests  int64
	chars     int64
}

func newRollingWindow(window, bucketSize time.Duration) *rollingWindow {
	numBuckets := int(window / bucketSize)
	if numBuckets == 0 {
		numBuckets = 1
	}
	return &rollingWindow{
		window:     window,
		bucketSize: bucketSize,
		buckets:    make([]bucket, numBuckets),
	}
}

// add records counts in the bucket for the current time.
func (rw *rollingWindow) add(requests, chars int64) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	now := time.Now()
	rw.pruneLocked(now)

	b := rw.findOrCreateBucketLocked(now)
	b.requests += requests
	b.chars += chars
}

// sum returns the window totals after pruning expired buckets.
func (rw *rollingWindow) sum() (requests, chars int64) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.pruneLocked(time.Now())
	for i := range rw.buckets {
		if !rw.buckets[i].timestamp.IsZero() {
			requests += rw.buckets[i].requests
			chars += rw.buckets[i].chars
		}
	}
	return requests, chars
}

// oldestTimestamp returns the timestamp of the oldest live bucket.
func (rw *rollingWindow) oldestTimestamp() time.Time {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	var oldest time.Time
	for i := range rw.buckets {
		ts := rw.buckets[i].timestamp
		if !ts.IsZero() && (oldest.IsZero() || ts.Before(oldest)) {
			oldest = ts
		}
	}
	return oldest
}

func (rw *rollingWindow) reset() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	for i := range rw.buckets {
		rw.buckets[i] = bucket{}
	}
}

func (rw *rollingWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-rw.window)
	for i := range rw.buckets {
		if !rw.buckets[i].timestamp.IsZero() && rw.buckets[i].timestamp.Before(cutoff) {
			rw.buckets[i] = bucket{}
		}
	}
}

func (rw *rollingWindow) findOrCreateBucketLocked(now time.Time) *bucket {
	bucketTime := now.Truncate(rw.bucketSize)

	for i := range rw.buckets {
		if rw.buckets[i].timestamp.Equal(bucketTime) {
			return &rw.buckets[i]
		}
	}

	// Reuse an empty slot, or evict the oldest bucket.
	targetIdx := -1
	for i := range rw.buckets {
		if rw.buckets[i].timestamp.IsZero() {
			targetIdx = i
			break
		}
	}
	if targetIdx == -1 {
		targetIdx = 0
		for i := 1; i < len(rw.buckets); i++ {
			if rw.buckets[i].timestamp.Before(rw.buckets[targetIdx].timestamp) {
				targetIdx = i
			}
		}
	}

	rw.buckets[targetIdx] = bucket{timestamp: bucketTime}
	return &rw.buckets[targetIdx]
}
