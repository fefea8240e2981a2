// Package arena provides the fixed-capacity scratch allocator shared by every
// vision operation.
//
// # Overview
//
// An Arena owns one contiguous block reserved once at start-up, either from a
// caller-supplied buffer or from an anonymous off-heap mapping. Allocation
// bumps a single high-water mark; there is no per-allocation free. Memory is
// released in bulk by rewinding to a Mark:
//
//	a, err := arena.New(256 << 10)
//	if err != nil { ... }
//	defer a.Close()
//
//	m := a.PushMark()
//	buf, err := a.Alloc(4096, arena.HintNone)
//	if errors.Is(err, arena.ErrArenaFull) {
//	    // fall back to a smaller working set
//	}
//	...
//	a.RewindTo(m) // every allocation made after m is gone
//
// # Scoped Release
//
// Scoped pushes a mark, runs a function and rewinds on every exit path,
// including panics. Nothing allocated inside the scope survives it:
//
//	err := a.Scoped(func() error {
//	    tmp, err := arena.AllocSlice[float32](a, 1024, arena.HintNone)
//	    if err != nil {
//	        return err
//	    }
//	    return process(tmp)
//	})
//
// # Failure Policy
//
// Exhaustion is recoverable: Alloc returns an *ExhaustedError that matches
// ErrArenaFull and never truncates the request. Out-of-order rewinds and use
// after Close are programming errors and panic.
//
// # Concurrency
//
// Arena is not synchronized. Exactly one logical owner may allocate, mark or
// rewind at a time; the frame-buffer mutex is the mechanism that establishes
// that owner.
//
// # Typed Allocations
//
// AllocSlice carves typed slices out of the block. Element types must not
// contain Go pointers: the block lives outside the garbage-collected heap and
// is never scanned.
package arena
