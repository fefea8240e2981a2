// Package resource implements the budget shared by scratch arenas and the host
// debug link.
//
//	┌───────────────────────────┬───────────────────────────┐
//	│  Memory Limit (fail-fast) │  Debug-link IO (bucket)   │
//	├───────────────────────────┼───────────────────────────┤
//	│  AcquireMemory            │  AcquireIO                │
//	│  ReleaseMemory            │  TryAcquireIO             │
//	│  MemoryUsage              │                           │
//	└───────────────────────────┴───────────────────────────┘
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. AcquireMemory never blocks: an arena that cannot reserve
// its block fails construction and the caller picks a smaller capacity.
//
// The IO limiter is a token bucket that paces frame-buffer snapshots so the
// debug link never starves the main vision context.
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
