package fft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/testutil"
)

func newTestArena(t *testing.T, capacity int) *arena.Arena {
	t.Helper()
	a, err := arena.New(capacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNextPow2(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {64, 64}, {65, 128}, {1000, 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextPow2(tt.in), "NextPow2(%d)", tt.in)
	}
	assert.Equal(t, 10, Log2(1024))
}

func TestSession1D_RoundTrip(t *testing.T) {
	a := newTestArena(t, 1<<20)
	rng := testutil.NewRNG(4711)

	signals := map[string][]float32{
		"zero":     make([]float32, 64),
		"impulse":  testutil.Impulse(128, 5),
		"sinusoid": testutil.Sinusoid(256, 7, 3, 0.4),
		"random":   rng.Signal(1024),
		"odd":      rng.Signal(300),
	}

	for name, sig := range signals {
		t.Run(name, func(t *testing.T) {
			s, err := Alloc1D(a, sig)
			require.NoError(t, err)
			defer s.Dealloc()

			assert.Equal(t, NextPow2(len(sig)), s.Len())
			assert.Equal(t, len(sig), s.SourceLen())

			s.Run()
			s.RunInverse()

			for i := range s.Len() {
				want := float32(0)
				if i < len(sig) {
					want = sig[i]
				}
				assert.InDelta(t, want, s.Real(i), 1e-4, "sample %d", i)
				assert.InDelta(t, 0, imag(s.Complex(i)), 1e-4, "sample %d", i)
			}
		})
	}

	assert.Zero(t, a.Used())
	assert.Zero(t, a.Depth())
}

func TestSession1D_MatchesDFT(t *testing.T) {
	a := newTestArena(t, 1<<16)
	sig := testutil.NewRNG(7).Signal(32)

	s, err := Alloc1D(a, sig)
	require.NoError(t, err)
	defer s.Dealloc()

	s.Run()
	for k, want := range testutil.DFT(sig) {
		got := s.Complex(k)
		assert.InDelta(t, real(want), real(got), 1e-3, "bin %d", k)
		assert.InDelta(t, imag(want), imag(got), 1e-3, "bin %d", k)
	}
}

func TestSession1D_Spectral(t *testing.T) {
	a := newTestArena(t, 1<<16)

	t.Run("impulse spectrum is flat", func(t *testing.T) {
		s, err := Alloc1D(a, testutil.Impulse(16, 0))
		require.NoError(t, err)
		defer s.Dealloc()

		s.Run()
		s.Magnitude()
		for i := range s.Len() {
			assert.InDelta(t, 1, s.Real(i), 1e-6)
			assert.Zero(t, imag(s.Complex(i)))
		}
	})

	t.Run("phase of a delayed impulse", func(t *testing.T) {
		s, err := Alloc1D(a, testutil.Impulse(16, 1))
		require.NoError(t, err)
		defer s.Dealloc()

		s.Run()
		s.Phase()
		// X[k] = exp(-2πik/16)
		assert.InDelta(t, 0, s.Real(0), 1e-6)
		assert.InDelta(t, -2*math.Pi/16, s.Real(1), 1e-5)
		assert.InDelta(t, -2*math.Pi*3/16, s.Real(3), 1e-5)
	})

	t.Run("log and exp invert", func(t *testing.T) {
		sig := []float32{0.5, 1, 2, 4, 8, 16, 32, 64}
		s, err := Alloc1D(a, sig)
		require.NoError(t, err)
		defer s.Dealloc()

		s.Log()
		assert.InDelta(t, math.Log(8), s.Real(4), 1e-6)
		s.Exp()
		for i, v := range sig {
			assert.InDelta(t, v, s.Real(i), 1e-4)
		}
	})

	t.Run("shift centers zero frequency", func(t *testing.T) {
		s, err := Alloc1D(a, testutil.Sinusoid(16, 0, 1, 0))
		require.NoError(t, err)
		defer s.Dealloc()

		s.Run()
		s.Magnitude()
		s.Shift()
		assert.InDelta(t, 16, s.Real(8), 1e-4)
		assert.InDelta(t, 0, s.Real(0), 1e-4)
	})

	t.Run("run again transforms the real channel", func(t *testing.T) {
		sig := testutil.NewRNG(3).Signal(64)
		s, err := Alloc1D(a, sig)
		require.NoError(t, err)
		defer s.Dealloc()

		s.Run()
		reals := make([]float32, s.Len())
		for i := range reals {
			reals[i] = s.Real(i)
		}
		s.RunAgain()

		ref, err := Alloc1D(a, reals)
		require.NoError(t, err)
		ref.Run()
		for i := range s.Len() {
			assert.InDelta(t, real(ref.Complex(i)), real(s.Complex(i)), 1e-3)
			assert.InDelta(t, imag(ref.Complex(i)), imag(s.Complex(i)), 1e-3)
		}
		ref.Dealloc()
	})
}

func TestShiftInvolution(t *testing.T) {
	rng := testutil.NewRNG(11)
	for _, dim := range [][2]int{{1, 1}, {2, 1}, {8, 1}, {4, 4}, {16, 8}, {2, 32}} {
		w, h := dim[0], dim[1]
		data := make([]float32, 2*w*h)
		rng.FillUniform(data)
		orig := append([]float32(nil), data...)

		swapCyclic(data, w, h)
		if w*h > 1 {
			assert.NotEqual(t, orig, data, "%dx%d", w, h)
		}
		swapCyclic(data, w, h)
		assert.Equal(t, orig, data, "%dx%d", w, h)
	}
}

func TestAlloc_Exhaustion(t *testing.T) {
	a := newTestArena(t, 4096)

	keep, err := a.Alloc(64, arena.HintNone)
	require.NoError(t, err)
	used, depth := a.Used(), a.Depth()

	_, err = Alloc1D(a, make([]float32, 1024))
	require.Error(t, err)
	assert.ErrorIs(t, err, arena.ErrArenaFull)
	assert.Equal(t, used, a.Used())
	assert.Equal(t, depth, a.Depth())

	_, err = Alloc2D(a, testutil.NewImage(64, 64), geomRect(0, 0, 64, 64))
	assert.ErrorIs(t, err, arena.ErrArenaFull)
	assert.Equal(t, used, a.Used())
	assert.Equal(t, depth, a.Depth())

	assert.Len(t, keep, 64)
}

func TestAlloc_InvalidSize(t *testing.T) {
	a := newTestArena(t, 4096)

	_, err := Alloc1D(a, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Alloc2D(a, testutil.NewImage(8, 8), geomRect(8, 8, 4, 4))
	assert.ErrorIs(t, err, ErrInvalidSize)

	assert.Zero(t, a.Used())
	assert.Zero(t, a.Depth())
}

func TestDealloc(t *testing.T) {
	a := newTestArena(t, 1<<16)

	s, err := Alloc1D(a, make([]float32, 16))
	require.NoError(t, err)
	assert.Positive(t, a.Used())

	s.Dealloc()
	assert.Zero(t, a.Used())
	assert.Panics(t, func() { s.Dealloc() })
	assert.Panics(t, func() { s.Run() })

	s2, err := Alloc2D(a, testutil.NewImage(4, 4), geomRect(0, 0, 4, 4))
	require.NoError(t, err)
	s2.Dealloc()
	assert.Panics(t, func() { s2.Dealloc() })
}

func TestDealloc_LIFO(t *testing.T) {
	a := newTestArena(t, 1<<16)

	outer, err := Alloc1D(a, make([]float32, 32))
	require.NoError(t, err)
	afterOuter := a.Used()

	inner, err := Alloc1D(a, make([]float32, 32))
	require.NoError(t, err)

	inner.Dealloc()
	assert.Equal(t, afterOuter, a.Used())
	outer.Dealloc()
	assert.Zero(t, a.Used())
}
