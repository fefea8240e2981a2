package vizcore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordProcess is called after each vision operation. wait is the time
	// spent acquiring the frame lock, duration the total time taken.
	RecordProcess(name string, wait, duration time.Duration, err error)

	// RecordLockTimeout is called when an operation gives up on the frame lock.
	RecordLockTimeout(name string)

	// RecordScratch is called after each operation with the arena's
	// high-water mark and capacity in bytes.
	RecordScratch(peak, capacity int)

	// RecordSnapshot is called after each debug-link snapshot attempt.
	RecordSnapshot(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordProcess(string, time.Duration, time.Duration, error) {}
func (NoopMetricsCollector) RecordLockTimeout(string)                                  {}
func (NoopMetricsCollector) RecordScratch(int, int)                                    {}
func (NoopMetricsCollector) RecordSnapshot(int64, time.Duration, error)                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ProcessCount      atomic.Int64
	ProcessErrors     atomic.Int64
	ProcessTotalNanos atomic.Int64
	LockWaitNanos     atomic.Int64
	LockTimeouts      atomic.Int64
	ScratchPeakBytes  atomic.Int64
	ScratchCapacity   atomic.Int64
	SnapshotCount     atomic.Int64
	SnapshotErrors    atomic.Int64
	SnapshotBytes     atomic.Int64
}

// RecordProcess implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProcess(_ string, wait, duration time.Duration, err error) {
	b.ProcessCount.Add(1)
	b.ProcessTotalNanos.Add(duration.Nanoseconds())
	b.LockWaitNanos.Add(wait.Nanoseconds())
	if err != nil {
		b.ProcessErrors.Add(1)
	}
}

// RecordLockTimeout implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLockTimeout(string) {
	b.LockTimeouts.Add(1)
}

// RecordScratch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScratch(peak, capacity int) {
	b.ScratchCapacity.Store(int64(capacity))
	for {
		cur := b.ScratchPeakBytes.Load()
		if int64(peak) <= cur || b.ScratchPeakBytes.CompareAndSwap(cur, int64(peak)) {
			return
		}
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(bytes int64, _ time.Duration, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotBytes.Add(bytes)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ProcessCount:     b.ProcessCount.Load(),
		ProcessErrors:    b.ProcessErrors.Load(),
		ProcessAvgNanos:  avg(b.ProcessTotalNanos.Load(), b.ProcessCount.Load()),
		LockWaitAvgNanos: avg(b.LockWaitNanos.Load(), b.ProcessCount.Load()),
		LockTimeouts:     b.LockTimeouts.Load(),
		ScratchPeakBytes: b.ScratchPeakBytes.Load(),
		ScratchCapacity:  b.ScratchCapacity.Load(),
		SnapshotCount:    b.SnapshotCount.Load(),
		SnapshotErrors:   b.SnapshotErrors.Load(),
		SnapshotBytes:    b.SnapshotBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ProcessCount     int64
	ProcessErrors    int64
	ProcessAvgNanos  int64
	LockWaitAvgNanos int64
	LockTimeouts     int64
	ScratchPeakBytes int64
	ScratchCapacity  int64
	SnapshotCount    int64
	SnapshotErrors   int64
	SnapshotBytes    int64
}
