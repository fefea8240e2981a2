package vizcore

import (
	"log/slog"
	"time"

	"github.com/hupe1980/vizcore/framebuffer"
)

const (
	// DefaultArenaSize is the scratch arena capacity used when none is configured.
	DefaultArenaSize = 1 << 20

	// DefaultFrameWidth and DefaultFrameHeight size the shared frame (QQVGA).
	DefaultFrameWidth  = 160
	DefaultFrameHeight = 120

	// DefaultHistorySize is the number of recent operations kept for History.
	DefaultHistorySize = 32
)

type options struct {
	arenaSize        int
	arenaBuffer      []byte
	frameWidth       int
	frameHeight      int
	metricsCollector MetricsCollector
	logger           *Logger
	lockTimeout      time.Duration
	lockPoll         time.Duration
	memoryLimit      int64
	debugLinkRate    int64
	debugLinkDrop    bool
	snapshotCodec    framebuffer.Codec
	fftWorkers       int
	historySize      int
}

// Option configures a Runtime.
type Option func(*options)

// WithArenaSize sets the scratch arena capacity in bytes.
func WithArenaSize(size int) Option {
	return func(o *options) {
		o.arenaSize = size
	}
}

// WithArenaBuffer backs the scratch arena with caller-owned memory, e.g. a
// statically reserved region. The arena uses the whole buffer unless
// WithArenaSize asks for less.
func WithArenaBuffer(buf []byte) Option {
	return func(o *options) {
		o.arenaBuffer = buf
	}
}

// WithFrameSize sets the dimensions of the shared frame.
func WithFrameSize(width, height int) Option {
	return func(o *options) {
		o.frameWidth = width
		o.frameHeight = height
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vizcore.BasicMetricsCollector{}
//	rt, _ := vizcore.New(vizcore.WithMetricsCollector(metrics))
//	// ... use rt ...
//	stats := metrics.GetStats()
//	fmt.Printf("Operations: %d, Avg latency: %dns\n", stats.ProcessCount, stats.ProcessAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vizcore.NewJSONLogger(slog.LevelInfo)
//	rt, _ := vizcore.New(vizcore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithLockTimeout bounds how long Process waits for the frame lock. Zero
// (the default) waits indefinitely.
func WithLockTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.lockTimeout = timeout
	}
}

// WithLockPollInterval sets the sleep between frame lock attempts while a
// lock timeout is running.
func WithLockPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.lockPoll = d
	}
}

// WithMemoryLimit caps the scratch memory reserved by the runtime. Zero means
// unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithDebugLinkRate throttles snapshots to bytesPerSec. Zero means unlimited.
func WithDebugLinkRate(bytesPerSec int64) Option {
	return func(o *options) {
		o.debugLinkRate = bytesPerSec
	}
}

// WithDebugLinkDrop makes Snapshot fail fast with framebuffer.ErrThrottled
// when the debug-link budget is spent instead of waiting for it. The dropped
// rows go out in the next full snapshot.
func WithDebugLinkDrop() Option {
	return func(o *options) {
		o.debugLinkDrop = true
	}
}

// WithSnapshotCodec selects the compression of debug-link snapshots.
func WithSnapshotCodec(c framebuffer.Codec) Option {
	return func(o *options) {
		o.snapshotCodec = c
	}
}

// WithFFTWorkers lets 2-D transforms started through Op use up to n
// goroutines.
func WithFFTWorkers(n int) Option {
	return func(o *options) {
		o.fftWorkers = n
	}
}

// WithHistorySize sets how many recent operations History reports.
func WithHistorySize(n int) Option {
	return func(o *options) {
		o.historySize = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		arenaSize:        DefaultArenaSize,
		frameWidth:       DefaultFrameWidth,
		frameHeight:      DefaultFrameHeight,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		snapshotCodec:    framebuffer.CodecLZ4,
		fftWorkers:       1,
		historySize:      DefaultHistorySize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) validate() error {
	if o.arenaSize < 0 || (o.arenaSize == 0 && o.arenaBuffer == nil) {
		return &ErrInvalidOption{Option: "arena size", Value: o.arenaSize}
	}
	if o.frameWidth <= 0 || o.frameHeight <= 0 {
		return &ErrInvalidOption{Option: "frame size", Value: [2]int{o.frameWidth, o.frameHeight}}
	}
	if o.lockTimeout < 0 {
		return &ErrInvalidOption{Option: "lock timeout", Value: o.lockTimeout}
	}
	if o.memoryLimit < 0 || o.debugLinkRate < 0 {
		return &ErrInvalidOption{Option: "resource limit", Value: [2]int64{o.memoryLimit, o.debugLinkRate}}
	}
	if o.snapshotCodec > framebuffer.CodecZSTD {
		return &ErrInvalidOption{Option: "snapshot codec", Value: o.snapshotCodec}
	}
	if o.historySize < 0 {
		return &ErrInvalidOption{Option: "history size", Value: o.historySize}
	}
	return nil
}
