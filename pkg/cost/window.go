package cost

import (
	"sync"
	"time"
)

// rollingWindow tracks spend over a rolling time window.
//
// The window is divided into fixed-size buckets; old buckets are pruned as
// they fall outside the window. Bucket granularity trades accuracy for
// memory (an hourly window with 1-minute buckets keeps 60 buckets).
type rollingWindow struct {
	window     time.Duration
	bucketSize time.Duration
	buckets    []windowBucket
	mu         sync.Mutex
}

// windowBucket holds spend for a specific time interval.
type windowBucket struct {
	timestamp time.Time
	amount    float64
}

// newRollingWindow creates a rolling window with the given duration and
// bucket granularity.
func newRollingWindow(window, bucketSize time.Duration) *rollingWindow {
	numBuckets := int(window / bucketSize)
	if numBuckets == 0 {
		numBuckets = 1
	}

	return &rollingWindow{
		window:     window,
		bucketSize: bucketSize,
		buckets:    make([]windowBucket, numBuckets),
	}
}

// add records spend in the bucket for the current time.
func (rw *rollingWindow) add(amount float64) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	now := time.Now()
	rw.pruneLocked(now)
	rw.findOrCreateBucketLocked(now).amount += amount
}

// sum returns total spend across all live buckets.
func (rw *rollingWindow) sum() float64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.pruneLocked(time.Now())

	var total float64
	for i := range rw.buckets {
		if !rw.buckets[i].timestamp.IsZero() {
			total += rw.buckets[i].amount
		}
	}
	return total
}

// reset clears all buckets.
func (rw *rollingWindow) reset() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	for i := range rw.buckets {
		rw.buckets[i] = windowBucket{}
	}
}

// pruneLocked clears buckets older than the window. Caller holds rw.mu.
func (rw *rollingWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-rw.window)
	for i := range rw.buckets {
		if !rw.buckets[i].timestamp.IsZero() && rw.buckets[i].timestamp.Before(cutoff) {
			rw.buckets[i] = windowBucket{}
		}
	}
}

// findOrCreateBucketLocked returns the bucket for the current time, reusing
// an empty slot or evicting the oldest bucket. Caller holds rw.mu.
func (rw *rollingWindow) findOrCreateBucketLocked(now time.Time) *windowBucket {
	bucketTime := now.Truncate(rw.bucketSize)

	for i := range rw.buckets {
		if rw.buckets[i].timestamp.Equal(bucketTime) {
			return &rw.buckets[i]
		}
	}

	targetIdx := -1
	for i := range rw.buckets {
		if rw.buckets[i].timestamp.IsZero() {
			targetIdx = i
			break
		}
	}

	if targetIdx == -1 {
		oldestIdx := 0
		oldestTime := rw.buckets[0].timestamp
		for i := 1; i < len(rw.buckets); i++ {
			if rw.buckets[i].timestamp.Before(oldestTime) {
				oldestIdx = i
				oldestTime = rw.buckets[i].timestamp
			}
		}
		targetIdx = oldestIdx
	}

	rw.buckets[targetIdx] = windowBucket{timestamp: bucketTime}
	return &rw.buckets[targetIdx]
}
