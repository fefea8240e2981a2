package fft

import (
	"math"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/geom"
)

// LinearPolar remaps the real channel from Cartesian to linear-polar
// coordinates around the buffer center. Output column x is radius
// x·R/Width() and output row y is angle y·π/Height(), where R is half the
// smaller side. Apply it to a Shift-ed magnitude spectrum: a real image's
// magnitude is point-symmetric, so half a turn covers every direction.
func (s *Session2D) LinearPolar() error {
	s.live()
	rmax := float64(min(s.w, s.h)) / 2
	scale := rmax / float64(s.w)
	return s.remap(func(x int) float64 {
		return float64(x) * scale
	})
}

// LogPolar is LinearPolar with radius exp(x·ln(R)/Width()), so column
// offsets measure scale ratios and row offsets measure rotation.
func (s *Session2D) LogPolar() error {
	s.live()
	rmax := float64(min(s.w, s.h)) / 2
	k := math.Log(rmax) / float64(s.w)
	return s.remap(func(x int) float64 {
		return math.Exp(float64(x) * k)
	})
}

// remap samples the current real channel along rays from the center into a
// scratch image, then copies it back.
func (s *Session2D) remap(radius func(x int) float64) error {
	return s.arena.Scoped(func() error {
		out, err := arena.AllocSlice[float32](s.arena, s.w*s.h, arena.HintNone)
		if err != nil {
			return err
		}

		cx, cy := float32(s.w/2), float32(s.h/2)
		for y := 0; y < s.h; y++ {
			theta := float64(y) * math.Pi / float64(s.h)
			for x := 0; x < s.w; x++ {
				p := geom.FromPolar(radius(x), theta)
				out[y*s.w+x] = geom.Bilinear(s.data, s.w, s.h, 2, cx+p.X, cy+p.Y)
			}
		}

		for i, v := range out {
			s.data[2*i] = v
			s.data[2*i+1] = 0
		}
		return nil
	})
}
