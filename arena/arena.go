package arena

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/vizcore/internal/cpuinfo"
	"github.com/hupe1980/vizcore/internal/mmap"
)

// Hint selects an allocation strategy.
//
// Only HintNone is defined. Other values are reserved and currently behave
// like HintNone.
type Hint uint8

const (
	// HintNone allocates best-effort from the arena's current growth end.
	HintNone Hint = 0
)

// Mark is a checkpoint of the arena's high-water mark.
type Mark struct {
	offset int
	depth  int
	gen    uint32
}

// Offset returns the high-water mark captured by m.
func (m Mark) Offset() int {
	return m.offset
}

// MemoryAcquirer reserves the arena's block against a global budget.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

// Stats tracks arena usage.
type Stats struct {
	Capacity int    // usable bytes
	Used     int    // current high-water mark
	Peak     int    // largest high-water mark since New or Reset
	Marks    int    // marks currently on the stack
	Allocs   uint64 // successful allocations
	Failures uint64 // allocations rejected for lack of space
}

// Arena is a fixed-capacity bump allocator with a mark stack.
// It is not safe for concurrent use.
type Arena struct {
	buf      []byte // aligned view, len == capacity
	align    int
	hwm      int
	marks    []int
	gen      uint32 // bumped by Reset so older marks are detected
	peak     int
	allocs   uint64
	failures uint64

	mapping  *mmap.Mapping
	acquirer MemoryAcquirer
	reserved int64
}

type config struct {
	buf      []byte
	align    int
	acquirer MemoryAcquirer
}

// Option is a configuration option for Arena.
type Option func(*config)

// WithBuffer backs the arena with caller-owned memory instead of an anonymous
// mapping. The buffer must outlive the arena. When the capacity passed to New
// is 0 or larger than the buffer, the whole buffer is used.
func WithBuffer(buf []byte) Option {
	return func(c *config) {
		c.buf = buf
	}
}

// WithAlignment sets the alignment of every allocation.
// It must be a power of two and at least 8. The default follows the CPU's
// vector width.
func WithAlignment(align int) Option {
	return func(c *config) {
		c.align = align
	}
}

// WithMemoryAcquirer reserves the arena's block from a shared budget.
// Only mapped arenas acquire memory; caller buffers are already accounted for.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(c *config) {
		c.acquirer = acquirer
	}
}

// New creates an Arena with the given capacity in bytes.
// Capacity is rounded down to a multiple of the alignment.
func New(capacity int, opts ...Option) (*Arena, error) {
	cfg := config{align: cpuinfo.Alignment()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.align < cpuinfo.MinAlignment || cfg.align&(cfg.align-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, cfg.align)
	}

	a := &Arena{align: cfg.align}

	if cfg.buf != nil {
		pad := alignPad(cfg.buf, cfg.align)
		avail := len(cfg.buf) - pad
		if capacity <= 0 || capacity > avail {
			capacity = avail
		}
		capacity = alignDown(capacity, cfg.align)
		if capacity <= 0 {
			return nil, fmt.Errorf("%w: buffer of %d bytes holds no aligned block", ErrInvalidCapacity, len(cfg.buf))
		}
		a.buf = cfg.buf[pad : pad+capacity : pad+capacity]
		return a, nil
	}

	capacity = alignDown(capacity, cfg.align)
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	if cfg.acquirer != nil {
		if err := cfg.acquirer.AcquireMemory(int64(capacity)); err != nil {
			return nil, err
		}
		a.acquirer = cfg.acquirer
		a.reserved = int64(capacity)
	}

	// Mappings are page aligned, which covers every accepted alignment.
	mapping, err := mmap.MapAnon(capacity)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(a.reserved)
		}
		return nil, fmt.Errorf("failed to map scratch block: %w", err)
	}
	a.mapping = mapping
	a.buf = mapping.Bytes()[:capacity:capacity]

	return a, nil
}

// Reset discards every allocation and clears the mark stack. A mapped block
// also hands its pages back to the OS; they are faulted in again on next use.
func (a *Arena) Reset() {
	a.panicIfClosed()
	if a.mapping != nil && a.peak > 0 {
		_ = a.mapping.Release()
	}
	a.hwm = 0
	a.marks = a.marks[:0]
	a.peak = 0
	a.gen++
}

// PushMark returns the current high-water mark and pushes it onto the mark stack.
func (a *Arena) PushMark() Mark {
	a.panicIfClosed()
	m := Mark{offset: a.hwm, depth: len(a.marks), gen: a.gen}
	a.marks = append(a.marks, a.hwm)
	return m
}

// Alloc reserves size bytes at the high-water mark.
//
// A zero size returns an empty, non-nil slice without advancing the mark. A
// request larger than the remaining capacity returns an *ExhaustedError and
// leaves the arena untouched.
func (a *Arena) Alloc(size int, hint Hint) ([]byte, error) {
	a.panicIfClosed()
	if size < 0 {
		panic(fmt.Sprintf("arena: negative allocation size %d", size))
	}
	_ = hint

	if size == 0 {
		return a.buf[a.hwm:a.hwm:a.hwm], nil
	}

	avail := len(a.buf) - a.hwm
	if size > avail {
		a.failures++
		return nil, &ExhaustedError{Requested: size, Available: avail}
	}

	// avail is a multiple of align, so the rounded size still fits.
	start := a.hwm
	a.hwm += alignUp(size, a.align)
	if a.hwm > a.peak {
		a.peak = a.hwm
	}
	a.allocs++

	return a.buf[start : start+size : start+size], nil
}

// AllocZeroed is Alloc followed by clearing the returned bytes.
func (a *Arena) AllocZeroed(size int, hint Hint) ([]byte, error) {
	b, err := a.Alloc(size, hint)
	if err != nil {
		return nil, err
	}
	clear(b)
	return b, nil
}

// RewindTo releases every allocation made after m and pops m together with
// every mark pushed after it.
//
// Rewinding to a mark above the current high-water mark, or to a mark that a
// Reset or an earlier rewind already discarded, panics.
func (a *Arena) RewindTo(m Mark) {
	a.panicIfClosed()
	if m.gen != a.gen || m.offset > a.hwm || m.depth > len(a.marks) ||
		(m.depth < len(a.marks) && a.marks[m.depth] != m.offset) {
		panic(fmt.Sprintf("arena: rewind to stale mark (offset %d, depth %d) with high-water mark %d and %d marks",
			m.offset, m.depth, a.hwm, len(a.marks)))
	}
	a.hwm = m.offset
	a.marks = a.marks[:m.depth]
}

// PopMark rewinds to the most recently pushed mark.
func (a *Arena) PopMark() {
	a.panicIfClosed()
	n := len(a.marks)
	if n == 0 {
		panic("arena: pop on empty mark stack")
	}
	a.RewindTo(Mark{offset: a.marks[n-1], depth: n - 1, gen: a.gen})
}

// Scoped runs fn between a PushMark and a RewindTo. The rewind happens on
// every exit path; a panic in fn propagates after the arena is restored.
func (a *Arena) Scoped(fn func() error) error {
	m := a.PushMark()
	defer a.RewindTo(m)
	return fn()
}

// ResetPeak restarts peak tracking from the current high-water mark.
func (a *Arena) ResetPeak() {
	a.peak = a.hwm
}

// Capacity returns the usable size of the arena in bytes.
func (a *Arena) Capacity() int {
	return len(a.buf)
}

// Used returns the current high-water mark.
func (a *Arena) Used() int {
	return a.hwm
}

// Free returns the number of bytes that can still be allocated.
func (a *Arena) Free() int {
	return len(a.buf) - a.hwm
}

// Depth returns the number of marks on the stack.
func (a *Arena) Depth() int {
	return len(a.marks)
}

// Alignment returns the alignment of every allocation.
func (a *Arena) Alignment() int {
	return a.align
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		Capacity: len(a.buf),
		Used:     a.hwm,
		Peak:     a.peak,
		Marks:    len(a.marks),
		Allocs:   a.allocs,
		Failures: a.failures,
	}
}

// Close releases the backing block. Any later use panics.
func (a *Arena) Close() error {
	if a.buf == nil {
		return nil
	}
	a.buf = nil
	a.marks = nil
	a.hwm = 0

	var err error
	if a.mapping != nil {
		err = a.mapping.Close()
		a.mapping = nil
	}
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(a.reserved)
		a.acquirer = nil
	}
	return err
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf("Arena{capacity: %d, used: %d, peak: %d, marks: %d, allocs: %d, failures: %d}",
		s.Capacity, s.Used, s.Peak, s.Marks, s.Allocs, s.Failures)
}

func (a *Arena) panicIfClosed() {
	if a.buf == nil {
		panic("arena: use after Close()")
	}
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

func alignDown(n, align int) int {
	return n &^ (align - 1)
}

// alignPad returns how many leading bytes of buf to skip so the block starts aligned.
func alignPad(buf []byte, align int) int {
	if len(buf) == 0 {
		return 0
	}
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	pad := int((uintptr(align) - addr&uintptr(align-1)) & uintptr(align-1))
	return min(pad, len(buf))
}
