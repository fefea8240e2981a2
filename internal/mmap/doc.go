// Package mmap provides anonymous memory mappings that live outside the Go heap.
//
// The arena allocator reserves its fixed-capacity block through MapAnon so the
// scratch region is never scanned or moved by the garbage collector, which is
// as close as a hosted runtime gets to a statically reserved memory block.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes()
//	_ = m.Release() // drop the pages, keep the range
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, MADV_DONTNEED release
//   - Windows: VirtualAlloc with demand paging, MEM_RESET release
//   - Anything else: a heap-backed fallback (release is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches Bytes() after Close returns.
package mmap
