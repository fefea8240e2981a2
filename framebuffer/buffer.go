package framebuffer

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vizcore/lock"
)

// IOLimiter throttles bytes sent over the debug link.
type IOLimiter interface {
	AcquireIO(ctx context.Context, bytes int) error
}

// TryIOLimiter is an IOLimiter that can refuse a request instead of waiting.
type TryIOLimiter interface {
	IOLimiter
	TryAcquireIO(bytes int) bool
}

type options struct {
	codec   Codec
	limiter IOLimiter
	drop    bool
	lockOps []lock.Option
}

// Option configures a Buffer.
type Option func(*options)

// WithCodec selects the snapshot compression. The default is CodecLZ4.
func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithIOLimiter throttles snapshot writes.
func WithIOLimiter(l IOLimiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// WithDropWhenThrottled makes Snapshot return ErrThrottled instead of waiting
// when the limiter implements TryIOLimiter and has no budget left.
func WithDropWhenThrottled() Option {
	return func(o *options) {
		o.drop = true
	}
}

// WithLockOptions configures the buffer's mutex.
func WithLockOptions(opts ...lock.Option) Option {
	return func(o *options) {
		o.lockOps = append(o.lockOps, opts...)
	}
}

// Buffer is a Frame guarded by a cross-domain mutex.
type Buffer struct {
	mu    *lock.Mutex
	frame *Frame
	dirty *roaring.Bitmap

	codec   Codec
	limiter IOLimiter
	drop    bool

	seq      uint32
	needFull atomic.Bool
}

// New creates a black w×h buffer. The first snapshot carries every row.
func New(w, h int, opts ...Option) *Buffer {
	o := options{codec: CodecLZ4}
	for _, opt := range opts {
		opt(&o)
	}

	dirty := roaring.New()
	frame := NewFrame(w, h)
	frame.dirty = dirty

	b := &Buffer{
		mu:      lock.New(o.lockOps...),
		frame:   frame,
		dirty:   dirty,
		codec:   o.codec,
		limiter: o.limiter,
		drop:    o.drop,
	}
	b.needFull.Store(true)
	return b
}

// Mutex returns the mutex guarding the frame.
func (b *Buffer) Mutex() *lock.Mutex {
	return b.mu
}

// Frame returns the guarded frame. The caller must hold Mutex().
func (b *Buffer) Frame() *Frame {
	return b.frame
}

// Width returns the frame width.
func (b *Buffer) Width() int {
	return b.frame.w
}

// Height returns the frame height.
func (b *Buffer) Height() int {
	return b.frame.h
}

// Codec returns the snapshot compression.
func (b *Buffer) Codec() Codec {
	return b.codec
}

// Write locks the frame for tag, runs fn and unlocks. The mutex is not
// re-entrant: calling Write while tag already holds it spins forever.
func (b *Buffer) Write(tag lock.Tag, fn func(f *Frame)) {
	b.mu.Lock(tag)
	defer b.mu.Unlock(tag)
	fn(b.frame)
}

// Invalidate makes the next snapshot carry every row, e.g. after the host
// reconnects.
func (b *Buffer) Invalidate() {
	b.needFull.Store(true)
}

// SnapshotStats describes one snapshot.
type SnapshotStats struct {
	Sequence uint32
	Full     bool
	Rows     int
	Bytes    int64
}

// Snapshot writes the rows changed since the previous snapshot to w.
//
// It tries the mutex exactly once with TryLockAlternate on behalf of tag and
// returns ErrBusy if another context holds it. The frame is unlocked before
// compression and the rate-limited write start. A failed write forces the
// next snapshot to be full. With WithDropWhenThrottled an exhausted link
// budget yields ErrThrottled and the dropped rows are resent in full later.
func (b *Buffer) Snapshot(ctx context.Context, w io.Writer, tag lock.Tag) (SnapshotStats, error) {
	if err := ctx.Err(); err != nil {
		return SnapshotStats{}, err
	}
	if !b.mu.TryLockAlternate(tag) {
		return SnapshotStats{}, ErrBusy
	}

	full := b.needFull.Swap(false)
	if full {
		b.dirty.AddRange(0, uint64(b.frame.h))
	}
	b.seq++
	hdr := header{
		codec:  b.codec,
		full:   full,
		width:  uint32(b.frame.w),
		height: uint32(b.frame.h),
		seq:    b.seq,
	}
	payload, runs, rows := encodeRows(b.frame, b.dirty)
	hdr.runs = runs
	b.dirty.Clear()
	b.mu.Unlock(tag)

	stats := SnapshotStats{Sequence: hdr.seq, Full: full, Rows: rows}

	block, err := encodeBlock(payload, b.codec)
	if err != nil {
		b.needFull.Store(true)
		return stats, err
	}

	out := append(hdr.marshal(), block...)
	if err := b.acquireIO(ctx, len(out)); err != nil {
		b.needFull.Store(true)
		return stats, err
	}

	n, err := w.Write(out)
	stats.Bytes = int64(n)
	if err != nil {
		b.needFull.Store(true)
		return stats, err
	}
	return stats, nil
}

func (b *Buffer) acquireIO(ctx context.Context, n int) error {
	if b.limiter == nil {
		return nil
	}
	if t, ok := b.limiter.(TryIOLimiter); ok && b.drop {
		if !t.TryAcquireIO(n) {
			return ErrThrottled
		}
		return nil
	}
	return b.limiter.AcquireIO(ctx, n)
}
