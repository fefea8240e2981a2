package register

import (
	"math"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/fft"
	"github.com/hupe1980/vizcore/geom"
)

// Result is the displacement of the second image relative to the first.
type Result struct {
	// Dx and Dy are the translation in pixels.
	Dx, Dy float64
	// Rotation is the counter-clockwise rotation in degrees, in (-90, 90].
	Rotation float64
	// Scale is the magnification factor. It is 1 unless recovered from a
	// log-polar correlation.
	Scale float64
	// Response is the correlation peak height.
	Response float32
}

// Translation returns the shift that maps the r region of a onto b.
func Translation(ar *arena.Arena, a, b fft.Image, r geom.Rect, opts ...fft.Option) (Result, error) {
	var res Result
	err := ar.Scoped(func() error {
		sa, err := fft.Alloc2D(ar, a, r, opts...)
		if err != nil {
			return err
		}
		sb, err := fft.Alloc2D(ar, b, r, opts...)
		if err != nil {
			return err
		}

		sa.Run()
		sb.Run()
		crossPower(sa.Data(), sb.Data(), true)
		sb.RunInverse()

		p := findPeak(sb.Data(), sb.Width(), sb.Height())
		res = Result{Dx: p.x, Dy: p.y, Scale: 1, Response: p.value}
		return nil
	})
	return res, err
}

// RotationScale returns the rotation and, with logPolar, the scale that maps
// the r region of a onto b. Both images should be centered on the same
// point; translation is discarded by working on magnitude spectra.
func RotationScale(ar *arena.Arena, a, b fft.Image, r geom.Rect, logPolar bool, opts ...fft.Option) (Result, error) {
	var res Result
	err := ar.Scoped(func() error {
		sa, err := fft.Alloc2D(ar, a, r, opts...)
		if err != nil {
			return err
		}
		sb, err := fft.Alloc2D(ar, b, r, opts...)
		if err != nil {
			return err
		}

		for _, s := range []*fft.Session2D{sa, sb} {
			s.Run()
			s.Magnitude()
			s.Shift()
			if logPolar {
				err = s.LogPolar()
			} else {
				err = s.LinearPolar()
			}
			if err != nil {
				return err
			}
			subtractMean(s.Data())
			s.RunAgain()
		}

		crossPower(sa.Data(), sb.Data(), false)
		sb.RunInverse()

		w, h := sb.Width(), sb.Height()
		p := findPeak(sb.Data(), w, h)
		res = Result{
			Rotation: p.y * 180 / float64(h),
			Scale:    1,
			Response: p.value,
		}
		if logPolar {
			rmax := float64(min(w, h)) / 2
			res.Scale = math.Exp(-p.x * math.Log(rmax) / float64(w))
		}
		return nil
	})
	return res, err
}

// crossPower stores b·conj(a) in b. With normalize each term is reduced to
// unit magnitude, leaving only the phase difference.
func crossPower(a, b []float32, normalize bool) {
	for i := 0; i < len(b); i += 2 {
		ar, ai := a[i], a[i+1]
		br, bi := b[i], b[i+1]
		re := br*ar + bi*ai
		im := bi*ar - br*ai
		if normalize {
			m := float32(math.Hypot(float64(re), float64(im)))
			if m < 1e-12 {
				re, im = 0, 0
			} else {
				re, im = re/m, im/m
			}
		}
		b[i], b[i+1] = re, im
	}
}

func subtractMean(data []float32) {
	var sum float64
	for i := 0; i < len(data); i += 2 {
		sum += float64(data[i])
	}
	mean := float32(sum / float64(len(data)/2))
	for i := 0; i < len(data); i += 2 {
		data[i] -= mean
	}
}

type peak struct {
	x, y  float64
	value float32
}

// findPeak locates the largest real sample of a cyclic w×h correlation
// surface, refines it with a parabola through each axis' neighbors and
// maps offsets past the midpoint to negative shifts.
func findPeak(data []float32, w, h int) peak {
	at := func(x, y int) float32 {
		x = (x + w) % w
		y = (y + h) % h
		return data[2*(y*w+x)]
	}

	bx, by := 0, 0
	best := at(0, 0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := at(x, y); v > best {
				best, bx, by = v, x, y
			}
		}
	}

	px := float64(bx)
	if w > 2 {
		px += parabolic(at(bx-1, by), best, at(bx+1, by))
	}
	py := float64(by)
	if h > 2 {
		py += parabolic(at(bx, by-1), best, at(bx, by+1))
	}

	return peak{x: unwrap(px, w), y: unwrap(py, h), value: best}
}

// parabolic returns the vertex offset of the parabola through (-1, l),
// (0, c) and (1, r), limited to half a sample.
func parabolic(l, c, r float32) float64 {
	den := float64(l - 2*c + r)
	if den >= 0 {
		return 0
	}
	off := 0.5 * float64(l-r) / den
	return math.Max(-0.5, math.Min(0.5, off))
}

func unwrap(v float64, n int) float64 {
	if v > float64(n)/2 {
		return v - float64(n)
	}
	return v
}
