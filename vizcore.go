package vizcore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/fft"
	"github.com/hupe1980/vizcore/framebuffer"
	"github.com/hupe1980/vizcore/geom"
	"github.com/hupe1980/vizcore/internal/cpuinfo"
	"github.com/hupe1980/vizcore/internal/resource"
	"github.com/hupe1980/vizcore/lock"
	"github.com/hupe1980/vizcore/register"
	"github.com/hupe1980/vizcore/seq"
)

// Runtime ties the scratch arena, the shared frame and its mutex together.
//
// Process and Close belong to the main context and must not be called
// concurrently with each other. Snapshot belongs to the debug context and may
// run concurrently with Process.
type Runtime struct {
	opts    options
	res     *resource.Controller
	arena   *arena.Arena
	fb      *framebuffer.Buffer
	logger  *Logger
	metrics MetricsCollector

	history *seq.List[Record]
	active  bool
	closed  atomic.Bool
}

// Record describes one completed Process call.
type Record struct {
	Name        string
	Start       time.Time
	Wait        time.Duration
	Duration    time.Duration
	ScratchPeak int
	Err         error
}

// New creates a Runtime.
func New(optFns ...Option) (*Runtime, error) {
	opts := applyOptions(optFns)
	if err := opts.validate(); err != nil {
		return nil, err
	}

	res := resource.NewController(resource.Config{
		MemoryLimitBytes:   opts.memoryLimit,
		IOLimitBytesPerSec: opts.debugLinkRate,
	})

	arenaOpts := []arena.Option{arena.WithMemoryAcquirer(res)}
	if opts.arenaBuffer != nil {
		arenaOpts = append(arenaOpts, arena.WithBuffer(opts.arenaBuffer))
	}
	a, err := arena.New(opts.arenaSize, arenaOpts...)
	if err != nil {
		return nil, translateError(err)
	}

	var lockOpts []lock.Option
	if opts.lockPoll > 0 {
		lockOpts = append(lockOpts, lock.WithPollInterval(opts.lockPoll))
	}
	fbOpts := []framebuffer.Option{
		framebuffer.WithCodec(opts.snapshotCodec),
		framebuffer.WithIOLimiter(res),
		framebuffer.WithLockOptions(lockOpts...),
	}
	if opts.debugLinkDrop {
		fbOpts = append(fbOpts, framebuffer.WithDropWhenThrottled())
	}
	fb := framebuffer.New(opts.frameWidth, opts.frameHeight, fbOpts...)

	rt := &Runtime{
		opts:    opts,
		res:     res,
		arena:   a,
		fb:      fb,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		history: seq.New[Record](nil, opts.historySize),
	}

	rt.logger.Info("runtime started",
		"arena_capacity", a.Capacity(),
		"alignment", a.Alignment(),
		"isa", cpuinfo.ActiveISA().String(),
		"frame_width", opts.frameWidth,
		"frame_height", opts.frameHeight,
		"snapshot_codec", opts.snapshotCodec.String(),
	)

	return rt, nil
}

// Arena returns the scratch arena. Outside Process it is empty.
func (rt *Runtime) Arena() *arena.Arena {
	return rt.arena
}

// FrameBuffer returns the shared frame buffer.
func (rt *Runtime) FrameBuffer() *framebuffer.Buffer {
	return rt.fb
}

// Process runs fn as one vision operation for the main context.
//
// It acquires the frame lock (bounded by WithLockTimeout when configured),
// runs fn inside an arena scope and releases both on every exit path,
// including a panic in fn. Running out of scratch memory is reported as
// ErrScratchExhausted; the caller can skip the frame and continue.
func (rt *Runtime) Process(ctx context.Context, name string, fn func(op *Op) error) error {
	if rt.closed.Load() {
		return ErrClosed
	}
	if rt.active {
		panic(fmt.Sprintf("vizcore: Process(%q) called from inside another Process", name))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	mu := rt.fb.Mutex()
	if rt.opts.lockTimeout > 0 {
		if !mu.LockTimeout(lock.TagMain, rt.opts.lockTimeout) {
			holder, _ := mu.State()
			rt.logger.LogLockTimeout(ctx, name, holder, rt.opts.lockTimeout)
			rt.metrics.RecordLockTimeout(name)
			rt.record(Record{Name: name, Start: start, Wait: time.Since(start), Duration: time.Since(start), Err: ErrLockTimeout})
			return ErrLockTimeout
		}
	} else {
		mu.Lock(lock.TagMain)
	}
	wait := time.Since(start)

	rt.active = true
	defer func() {
		rt.active = false
		mu.Unlock(lock.TagMain)
	}()

	before := rt.arena.Used()
	rt.arena.ResetPeak()
	op := &Op{rt: rt, ctx: ctx, name: name}

	err := rt.arena.Scoped(func() error {
		return fn(op)
	})
	peak := rt.arena.Stats().Peak

	if errors.Is(err, arena.ErrArenaFull) {
		rt.logger.LogArenaExhausted(ctx, name, rt.arena.Stats())
	}
	err = translateError(err)

	duration := time.Since(start)
	scratch := peak - before
	rt.metrics.RecordProcess(name, wait, duration, err)
	rt.metrics.RecordScratch(peak, rt.arena.Capacity())
	rt.logger.LogProcess(ctx, name, duration, scratch, err)
	rt.record(Record{Name: name, Start: start, Wait: wait, Duration: duration, ScratchPeak: scratch, Err: err})

	return err
}

// Snapshot sends the frame rows changed since the previous snapshot to w on
// behalf of the debug context. It never waits for the frame lock: if the
// main context holds it, Snapshot returns an error matching
// framebuffer.ErrBusy.
func (rt *Runtime) Snapshot(ctx context.Context, w io.Writer) (framebuffer.SnapshotStats, error) {
	if rt.closed.Load() {
		return framebuffer.SnapshotStats{}, ErrClosed
	}

	start := time.Now()
	stats, err := rt.fb.Snapshot(ctx, w, lock.TagDebug)
	rt.metrics.RecordSnapshot(stats.Bytes, time.Since(start), err)
	if !errors.Is(err, framebuffer.ErrBusy) {
		rt.logger.LogSnapshot(ctx, stats.Sequence, stats.Rows, stats.Bytes, err)
	}
	return stats, err
}

// History returns the most recent operations, oldest first.
func (rt *Runtime) History() []Record {
	out := make([]Record, 0, rt.history.Len())
	for _, r := range rt.history.All() {
		out = append(out, r)
	}
	return out
}

// Stats reports scratch and budget usage.
func (rt *Runtime) Stats() RuntimeStats {
	return RuntimeStats{
		Arena:       rt.arena.Stats(),
		MemoryUsage: rt.res.MemoryUsage(),
		MemoryLimit: rt.res.MemoryLimit(),
		LastOwner:   rt.fb.Mutex().LastOwner(),
	}
}

// RuntimeStats is a point-in-time view of a Runtime.
type RuntimeStats struct {
	Arena       arena.Stats
	MemoryUsage int64
	MemoryLimit int64
	LastOwner   lock.Tag
}

// Close releases the scratch arena. Further calls return nil.
func (rt *Runtime) Close() error {
	if rt == nil || rt.closed.Swap(true) {
		return nil
	}
	rt.history.Free()
	err := rt.arena.Close()
	rt.logger.Info("runtime closed")
	return err
}

func (rt *Runtime) record(r Record) {
	if rt.opts.historySize == 0 {
		return
	}
	if rt.history.Len() == rt.opts.historySize {
		rt.history.PopFront()
	}
	rt.history.PushBack(r)
}

// Op is the handle passed to a Process callback. It is valid only for the
// duration of the callback; everything it allocates is released when the
// callback returns.
type Op struct {
	rt   *Runtime
	ctx  context.Context
	name string
}

// Name returns the operation name.
func (op *Op) Name() string {
	return op.name
}

// Context returns the context passed to Process.
func (op *Op) Context() context.Context {
	return op.ctx
}

// Logger returns a logger tagged with the operation.
func (op *Op) Logger() *Logger {
	return op.rt.logger.WithTag(lock.TagMain).WithOperation(op.name)
}

// Arena returns the scratch arena.
func (op *Op) Arena() *arena.Arena {
	return op.rt.arena
}

// Frame returns the shared frame. The frame lock is held for the whole
// callback, so write through this frame: taking the buffer's lock again from
// inside Process never returns.
func (op *Op) Frame() *framebuffer.Frame {
	return op.rt.fb.Frame()
}

// Scratch returns n zeroed float32 values from the arena.
func (op *Op) Scratch(n int) ([]float32, error) {
	return arena.AllocSliceZeroed[float32](op.rt.arena, n, arena.HintNone)
}

// FFT1D starts a 1-D transform of samples.
func (op *Op) FFT1D(samples []float32) (*fft.Session1D, error) {
	return fft.Alloc1D(op.rt.arena, samples)
}

// FFT2D starts a 2-D transform of the r region of the frame.
func (op *Op) FFT2D(r geom.Rect) (*fft.Session2D, error) {
	return fft.Alloc2D(op.rt.arena, op.Frame(), r, fft.WithWorkers(op.rt.opts.fftWorkers))
}

// Translation estimates how far the r region of the frame moved relative to
// ref.
func (op *Op) Translation(ref fft.Image, r geom.Rect) (register.Result, error) {
	return register.Translation(op.rt.arena, ref, op.Frame(), r, fft.WithWorkers(op.rt.opts.fftWorkers))
}

// RotationScale estimates the rotation and scale of the r region of the
// frame relative to ref.
func (op *Op) RotationScale(ref fft.Image, r geom.Rect, logPolar bool) (register.Result, error) {
	return register.RotationScale(op.rt.arena, ref, op.Frame(), r, logPolar, fft.WithWorkers(op.rt.opts.fftWorkers))
}
