package vizcore

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/framebuffer"
	"github.com/hupe1980/vizcore/geom"
	"github.com/hupe1980/vizcore/lock"
	"github.com/hupe1980/vizcore/testutil"
)

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	rt, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func assertReleased(t *testing.T, rt *Runtime) {
	t.Helper()
	assert.Zero(t, rt.Arena().Used())
	assert.Zero(t, rt.Arena().Depth())
	_, locked := rt.FrameBuffer().Mutex().State()
	assert.False(t, locked)
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rt := newTestRuntime(t)
		assert.Equal(t, DefaultArenaSize, rt.Arena().Capacity())
		assert.Equal(t, DefaultFrameWidth, rt.FrameBuffer().Width())
		assert.Equal(t, DefaultFrameHeight, rt.FrameBuffer().Height())
		assert.Equal(t, framebuffer.CodecLZ4, rt.FrameBuffer().Codec())
		assert.Equal(t, int64(DefaultArenaSize), rt.Stats().MemoryUsage)
	})

	t.Run("caller buffer", func(t *testing.T) {
		buf := make([]byte, 64<<10)
		rt := newTestRuntime(t, WithArenaBuffer(buf), WithArenaSize(0))
		assert.LessOrEqual(t, rt.Arena().Capacity(), len(buf))
		assert.Greater(t, rt.Arena().Capacity(), len(buf)-128)
	})

	t.Run("invalid options", func(t *testing.T) {
		tests := []Option{
			WithArenaSize(-1),
			WithFrameSize(0, 10),
			WithLockTimeout(-time.Second),
			WithMemoryLimit(-1),
			WithSnapshotCodec(framebuffer.Codec(9)),
			WithHistorySize(-1),
		}
		for _, opt := range tests {
			_, err := New(opt)
			var invalid *ErrInvalidOption
			assert.ErrorAs(t, err, &invalid)
		}
	})

	t.Run("memory limit", func(t *testing.T) {
		_, err := New(WithArenaSize(1<<20), WithMemoryLimit(1<<16))
		assert.ErrorIs(t, err, ErrMemoryLimit)

		rt := newTestRuntime(t, WithArenaSize(1<<16), WithMemoryLimit(1<<16))
		assert.Equal(t, int64(1<<16), rt.Stats().MemoryLimit)
	})
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("success releases scratch and lock", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		rt := newTestRuntime(t, WithArenaSize(1<<16), WithMetricsCollector(metrics))

		err := rt.Process(ctx, "fill", func(op *Op) error {
			owner, locked := rt.FrameBuffer().Mutex().State()
			assert.True(t, locked)
			assert.Equal(t, lock.TagMain, owner)

			buf, err := op.Scratch(1024)
			if err != nil {
				return err
			}
			assert.Len(t, buf, 1024)
			op.Frame().Fill(7)
			return nil
		})
		require.NoError(t, err)
		assertReleased(t, rt)

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.ProcessCount)
		assert.Zero(t, stats.ProcessErrors)
		assert.GreaterOrEqual(t, stats.ScratchPeakBytes, int64(4096))

		hist := rt.History()
		require.Len(t, hist, 1)
		assert.Equal(t, "fill", hist[0].Name)
		assert.GreaterOrEqual(t, hist[0].ScratchPeak, 4096)
		assert.NoError(t, hist[0].Err)
		assert.Equal(t, lock.TagMain, rt.Stats().LastOwner)
	})

	t.Run("error is returned unchanged", func(t *testing.T) {
		rt := newTestRuntime(t, WithArenaSize(1<<16))
		boom := errors.New("boom")

		err := rt.Process(ctx, "fail", func(op *Op) error {
			_, _ = op.Scratch(64)
			return boom
		})
		assert.Same(t, boom, err)
		assertReleased(t, rt)
	})

	t.Run("exhaustion is recoverable", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		rt := newTestRuntime(t, WithArenaSize(1<<12), WithMetricsCollector(metrics))

		err := rt.Process(ctx, "greedy", func(op *Op) error {
			_, err := op.Scratch(1 << 12)
			return err
		})
		assert.ErrorIs(t, err, ErrScratchExhausted)
		assert.ErrorIs(t, err, arena.ErrArenaFull)
		assertReleased(t, rt)
		assert.Equal(t, int64(1), metrics.GetStats().ProcessErrors)

		// The next frame works normally.
		err = rt.Process(ctx, "modest", func(op *Op) error {
			_, err := op.Scratch(16)
			return err
		})
		assert.NoError(t, err)
	})

	t.Run("panic releases scratch and lock", func(t *testing.T) {
		rt := newTestRuntime(t, WithArenaSize(1<<16))

		assert.Panics(t, func() {
			_ = rt.Process(ctx, "crash", func(op *Op) error {
				_, _ = op.Scratch(128)
				panic("crash")
			})
		})
		assertReleased(t, rt)

		assert.NoError(t, rt.Process(ctx, "after", func(*Op) error { return nil }))
	})

	t.Run("nested process panics", func(t *testing.T) {
		rt := newTestRuntime(t, WithArenaSize(1<<16))

		assert.Panics(t, func() {
			_ = rt.Process(ctx, "outer", func(*Op) error {
				return rt.Process(ctx, "inner", func(*Op) error { return nil })
			})
		})
		assertReleased(t, rt)
	})

	t.Run("lock timeout", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		rt := newTestRuntime(t,
			WithArenaSize(1<<16),
			WithLockTimeout(5*time.Millisecond),
			WithLockPollInterval(time.Millisecond),
			WithMetricsCollector(metrics),
		)
		mu := rt.FrameBuffer().Mutex()
		require.True(t, mu.TryLockAlternate(lock.TagDebug))

		called := false
		err := rt.Process(ctx, "blocked", func(*Op) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrLockTimeout)
		assert.False(t, called)
		assert.Equal(t, int64(1), metrics.GetStats().LockTimeouts)

		owner, locked := mu.State()
		assert.True(t, locked)
		assert.Equal(t, lock.TagDebug, owner)
		mu.Unlock(lock.TagDebug)

		assert.NoError(t, rt.Process(ctx, "unblocked", func(*Op) error { return nil }))
	})

	t.Run("canceled context", func(t *testing.T) {
		rt := newTestRuntime(t, WithArenaSize(1<<16))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := rt.Process(cctx, "late", func(*Op) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("history is bounded", func(t *testing.T) {
		rt := newTestRuntime(t, WithArenaSize(1<<16), WithHistorySize(3))
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			require.NoError(t, rt.Process(ctx, name, func(*Op) error { return nil }))
		}

		hist := rt.History()
		require.Len(t, hist, 3)
		assert.Equal(t, "c", hist[0].Name)
		assert.Equal(t, "e", hist[2].Name)
	})
}

func TestProcess_Registration(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, WithFrameSize(96, 96), WithFFTWorkers(2))

	ref := testutil.NewRNG(4711).NoiseImage(96, 96)
	moved := ref.Translate(6, -4)

	err := rt.Process(ctx, "load", func(op *Op) error {
		op.Frame().CopyFrom(moved.Gray())
		return nil
	})
	require.NoError(t, err)

	var res struct{ dx, dy float64 }
	err = rt.Process(ctx, "drift", func(op *Op) error {
		r, err := op.Translation(ref, geom.Rect{X: 16, Y: 16, W: 64, H: 64})
		res.dx, res.dy = r.Dx, r.Dy
		return err
	})
	require.NoError(t, err)
	assert.InDelta(t, 6, res.dx, 0.3)
	assert.InDelta(t, -4, res.dy, 0.3)
	assertReleased(t, rt)

	hist := rt.History()
	assert.GreaterOrEqual(t, hist[len(hist)-1].ScratchPeak, 2*2*4*64*64)
}

func TestProcess_FFT(t *testing.T) {
	rt := newTestRuntime(t, WithFrameSize(32, 32))

	err := rt.Process(context.Background(), "spectrum", func(op *Op) error {
		op.Frame().Fill(1)

		s, err := op.FFT2D(geom.Rect{W: 32, H: 32})
		if err != nil {
			return err
		}
		s.Run()
		assert.InDelta(t, 1024, s.Real(0, 0), 1e-3)

		s1, err := op.FFT1D(testutil.Impulse(8, 0))
		if err != nil {
			return err
		}
		s1.Run()
		assert.InDelta(t, 1, s1.Real(3), 1e-6)
		return nil
	})
	require.NoError(t, err)
	assertReleased(t, rt)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	rt := newTestRuntime(t, WithFrameSize(32, 16), WithSnapshotCodec(framebuffer.CodecZSTD), WithMetricsCollector(metrics))

	require.NoError(t, rt.Process(ctx, "draw", func(op *Op) error {
		f := op.Frame()
		for y := range f.Height() {
			for x := range f.Width() {
				f.Set(x, y, uint8(x*y))
			}
		}

		var wire bytes.Buffer
		_, err := rt.Snapshot(ctx, &wire)
		assert.ErrorIs(t, err, framebuffer.ErrBusy)
		return nil
	}))

	var wire bytes.Buffer
	stats, err := rt.Snapshot(ctx, &wire)
	require.NoError(t, err)
	assert.True(t, stats.Full)

	host := framebuffer.NewFrame(32, 16)
	info, err := framebuffer.ApplySnapshot(&wire, host)
	require.NoError(t, err)
	assert.Equal(t, framebuffer.CodecZSTD, info.Codec)
	assert.Equal(t, uint8(5*7), host.At(5, 7))

	ms := metrics.GetStats()
	assert.Equal(t, int64(2), ms.SnapshotCount)
	assert.Equal(t, int64(1), ms.SnapshotErrors)
	assert.Equal(t, stats.Bytes, ms.SnapshotBytes)
}

func TestSnapshot_DebugLinkDrop(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, WithFrameSize(64, 64), WithSnapshotCodec(framebuffer.CodecNone),
		WithDebugLinkRate(1000), WithDebugLinkDrop())

	var wire bytes.Buffer
	_, err := rt.Snapshot(ctx, &wire)
	require.NoError(t, err)

	wire.Reset()
	start := time.Now()
	_, err = rt.Snapshot(ctx, &wire)
	assert.ErrorIs(t, err, framebuffer.ErrThrottled)
	assert.Zero(t, wire.Len())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSnapshot_Concurrent(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t, WithFrameSize(64, 64))

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wire bytes.Buffer
		for range 200 {
			wire.Reset()
			_, err := rt.Snapshot(ctx, &wire)
			if err != nil && !errors.Is(err, framebuffer.ErrBusy) {
				t.Errorf("snapshot: %v", err)
				return
			}
		}
	}()

	for i := range 200 {
		require.NoError(t, rt.Process(ctx, "write", func(op *Op) error {
			op.Frame().Set(i%64, i/64%64, uint8(i))
			return nil
		}))
	}
	<-done
}

func TestClose(t *testing.T) {
	rt, err := New(WithArenaSize(1 << 12))
	require.NoError(t, err)

	require.NoError(t, rt.Close())
	assert.NoError(t, rt.Close())

	assert.ErrorIs(t, rt.Process(context.Background(), "x", func(*Op) error { return nil }), ErrClosed)
	_, err = rt.Snapshot(context.Background(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, rt.Stats().MemoryUsage)
}
