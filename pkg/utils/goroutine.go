package utils

import (
	"runtime"
	"testing"
	"time"
)

// GoroutineLeakDetector fails a test when goroutines started during it are
// still running at the end.
type GoroutineLeakDetector struct {
	t             testing.TB
	initialCount  int
	allowedGrowth int
	deadline      time.Duration
	pollInterval  time.Duration
}

// NewGoroutineLeakDetector records the current goroutine count.
func NewGoroutineLeakDetector(t testing.TB) *GoroutineLeakDetector {
	return &GoroutineLeakDetector{
		t:            t,
		initialCount: runtime.NumGoroutine(),
		deadline:     2 * time.Second,
		pollInterval: 20 * time.Millisecond,
	}
}

// SetAllowedGrowth sets the number of goroutines allowed to remain.
func (d *GoroutineLeakDetector) SetAllowedGrowth(n int) *GoroutineLeakDetector {
	d.allowedGrowth = n
	return d
}

// SetDeadline sets how long Check waits for goroutines to exit.
func (d *GoroutineLeakDetector) SetDeadline(deadline time.Duration) *GoroutineLeakDetector {
	d.deadline = deadline
	return d
}

// Check polls until the goroutine count is back within bounds or the
// deadline passes, then reports a leak with all stacks.
func (d *GoroutineLeakDetector) Check() {
	d.t.Helper()

	limit := d.initialCount + d.allowedGrowth
	stop := time.Now().Add(d.deadline)
	count := runtime.NumGoroutine()
	for count > limit && time.Now().Before(stop) {
		time.Sleep(d.pollInterval)
		count = runtime.NumGoroutine()
	}

	if count > limit {
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		d.t.Errorf("Goroutine leak detected: started with %d, ended with %d (allowed growth %d)\n%s",
			d.initialCount, count, d.allowedGrowth, buf[:n])
	}
}
